// Package paystub implements an importer for the text extracted from
// payroll paystub PDFs. Each stub becomes one multi-posting
// transaction: earnings credit income accounts, deductions and taxes
// debit their accounts, and the net payment distribution debits the
// deposit accounts.
package paystub

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// AccountMapping maps a paystub line description to a ledger account.
type AccountMapping struct {
	Description string `yaml:"description"`
	Account     string `yaml:"account"`
}

// MappingConfig is the YAML description-to-account mapping, one list
// per paystub section.
type MappingConfig struct {
	Earnings     []AccountMapping `yaml:"earnings"`
	Deductions   []AccountMapping `yaml:"deductions"`
	Taxes        []AccountMapping `yaml:"taxes"`
	Distribution []AccountMapping `yaml:"distribution"`
}

// Mapper resolves paystub line descriptions to ledger accounts.
type Mapper struct {
	config   MappingConfig
	accounts map[string]map[string]string
}

// Fallback account roots per section for unmapped descriptions.
var fallbackRoots = map[string]string{
	sectionEarnings:     "Income:Unmapped",
	sectionDeductions:   "Expenses:Unmapped",
	sectionTaxes:        "Expenses:Taxes:Unmapped",
	sectionDistribution: "Assets:Unmapped",
}

// NewMapper creates a Mapper from a YAML configuration file.
func NewMapper(configPath string) (*Mapper, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var config MappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return NewMapperFromConfig(config), nil
}

// NewMapperFromConfig creates a Mapper from an in-memory configuration.
func NewMapperFromConfig(config MappingConfig) *Mapper {
	mapper := &Mapper{
		config:   config,
		accounts: make(map[string]map[string]string),
	}

	sections := map[string][]AccountMapping{
		sectionEarnings:     config.Earnings,
		sectionDeductions:   config.Deductions,
		sectionTaxes:        config.Taxes,
		sectionDistribution: config.Distribution,
	}
	for section, mappings := range sections {
		byDescription := make(map[string]string, len(mappings))
		for _, mapping := range mappings {
			byDescription[mapping.Description] = mapping.Account
		}
		mapper.accounts[section] = byDescription
	}

	return mapper
}

// Account returns the ledger account for a line description in the
// given section, falling back to an Unmapped subaccount.
func (m *Mapper) Account(section, description string) string {
	if account := m.accounts[section][description]; account != "" {
		return account
	}
	return fallbackRoots[section] + ":" + sanitizeAccountName(description)
}

// HasMapping checks if an explicit mapping exists for a description.
func (m *Mapper) HasMapping(section, description string) bool {
	_, ok := m.accounts[section][description]
	return ok
}

var invalidAccountChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// sanitizeAccountName turns a free-form description into a valid
// Beancount account component.
func sanitizeAccountName(description string) string {
	component := invalidAccountChars.ReplaceAllString(description, "-")
	component = strings.Trim(component, "-")
	if component == "" {
		return "Other"
	}
	return strings.ToUpper(component[:1]) + component[1:]
}
