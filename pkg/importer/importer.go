// Package importer defines the contract statement importers implement
// and a registry for matching files against configured importers.
package importer

import (
	"fmt"
	"time"

	"github.com/davidciani/beancount-addons/pkg/ledger"
)

// BalanceType selects where the balance assertion derived from a
// statement's declared ledger balance is placed.
type BalanceType int

const (
	// BalanceNone doesn't insert a Balance directive.
	BalanceNone BalanceType = iota
	// BalanceDeclared inserts a Balance directive at the declared date.
	BalanceDeclared
	// BalanceLast inserts a Balance directive at the date following the
	// last extracted transaction.
	BalanceLast
)

// ParseBalanceType parses a balance type name as used in configuration
// files ("none", "declared", "last"). The empty string means declared.
func ParseBalanceType(s string) (BalanceType, error) {
	switch s {
	case "none":
		return BalanceNone, nil
	case "declared", "":
		return BalanceDeclared, nil
	case "last":
		return BalanceLast, nil
	}
	return BalanceNone, fmt.Errorf("unknown balance type: %q", s)
}

// Importer extracts ledger directives from downloaded statement files.
type Importer interface {
	// Name returns a short identifier for the importer instance.
	Name() string

	// Identify reports whether this importer handles the given file.
	Identify(filepath string) bool

	// Account returns the account transactions from the file post to.
	Account(filepath string) string

	// Date returns the statement date, used when archiving the file.
	// The zero time means no date could be determined.
	Date(filepath string) (time.Time, error)

	// Filename returns the archive basename for the file, or empty to
	// keep the original name.
	Filename(filepath string) string

	// Extract returns the directives found in the file.
	Extract(filepath string) ([]ledger.Directive, error)
}

// Registry holds the configured importers in declaration order.
type Registry struct {
	importers []Importer
}

// NewRegistry creates a Registry over the given importers.
func NewRegistry(importers ...Importer) *Registry {
	return &Registry{importers: importers}
}

// Add appends an importer to the registry.
func (r *Registry) Add(imp Importer) {
	r.importers = append(r.importers, imp)
}

// Importers returns the registered importers in order.
func (r *Registry) Importers() []Importer {
	return r.importers
}

// Identify returns the single importer claiming the file.
// It returns nil with no error when no importer matches, and an error
// when more than one matches.
func (r *Registry) Identify(filepath string) (Importer, error) {
	var matches []Importer
	for _, imp := range r.importers {
		if imp.Identify(filepath) {
			matches = append(matches, imp)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	names := make([]string, len(matches))
	for i, imp := range matches {
		names[i] = imp.Name()
	}
	return nil, fmt.Errorf("multiple importers match %s: %v", filepath, names)
}
