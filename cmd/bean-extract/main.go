// Package main is the entry point for the bean-extract CLI.
package main

import (
	"os"

	"github.com/davidciani/beancount-addons/cmd/bean-extract/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
