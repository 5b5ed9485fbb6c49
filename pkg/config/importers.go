package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/importer/applecard"
	"github.com/davidciani/beancount-addons/pkg/importer/chase"
	"github.com/davidciani/beancount-addons/pkg/importer/ofx"
	"github.com/davidciani/beancount-addons/pkg/importer/paystub"
	"github.com/davidciani/beancount-addons/pkg/importer/schwab"
)

// ImporterSpec is one importer definition in the importers YAML file.
// Which fields apply depends on the type.
type ImporterSpec struct {
	Type        string `yaml:"type"`
	Account     string `yaml:"account"`
	AcctID      string `yaml:"acctid,omitempty"`
	LastFour    string `yaml:"lastfour,omitempty"`
	Basename    string `yaml:"basename,omitempty"`
	BalanceType string `yaml:"balance_type,omitempty"`
	Employer    string `yaml:"employer,omitempty"`
	Mapping     string `yaml:"mapping,omitempty"`
}

// ImportersFile is the YAML file listing the configured importers.
type ImportersFile struct {
	Importers []ImporterSpec `yaml:"importers"`
}

// LoadImporters reads the importers YAML file and builds a registry.
// Relative mapping paths resolve against the file's directory.
func LoadImporters(path string) (*importer.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read importers file: %w", err)
	}

	var file ImportersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	registry := importer.NewRegistry()
	for i, spec := range file.Importers {
		imp, err := buildImporter(spec, filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("importer %d (%s): %w", i, spec.Type, err)
		}
		registry.Add(imp)
	}

	return registry, nil
}

func buildImporter(spec ImporterSpec, baseDir string) (importer.Importer, error) {
	if spec.Account == "" {
		return nil, fmt.Errorf("account is required")
	}

	switch spec.Type {
	case "ofx":
		balanceType, err := importer.ParseBalanceType(spec.BalanceType)
		if err != nil {
			return nil, err
		}
		return ofx.New(ofx.Config{
			AcctIDRegexp: spec.AcctID,
			Account:      spec.Account,
			Basename:     spec.Basename,
			BalanceType:  balanceType,
		})

	case "schwab-checking":
		return schwab.NewChecking(schwab.CheckingConfig{
			AcctIDRegexp: spec.AcctID,
			Account:      spec.Account,
			Basename:     spec.Basename,
		})

	case "schwab-bank":
		if spec.LastFour == "" {
			return nil, fmt.Errorf("lastfour is required")
		}
		return schwab.NewBank(schwab.BankConfig{
			LastFour: spec.LastFour,
			Account:  spec.Account,
		})

	case "applecard":
		return applecard.New(applecard.Config{Account: spec.Account}), nil

	case "chase":
		if spec.LastFour == "" {
			return nil, fmt.Errorf("lastfour is required")
		}
		return chase.New(chase.Config{
			LastFour: spec.LastFour,
			Account:  spec.Account,
		})

	case "paystub":
		if spec.Mapping == "" {
			return nil, fmt.Errorf("mapping is required")
		}
		mappingPath := spec.Mapping
		if !filepath.IsAbs(mappingPath) {
			mappingPath = filepath.Join(baseDir, mappingPath)
		}
		mapper, err := paystub.NewMapper(mappingPath)
		if err != nil {
			return nil, err
		}
		return paystub.New(paystub.Config{
			Employer: spec.Employer,
			Mapper:   mapper,
			Account:  spec.Account,
			Basename: spec.Basename,
		}), nil
	}

	return nil, fmt.Errorf("unknown importer type: %q", spec.Type)
}
