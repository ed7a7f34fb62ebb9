package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	// Input
	if c.Input == "" {
		result.Errors = append(result.Errors, "input: a document path is required")
	} else {
		switch strings.ToLower(filepath.Ext(c.Input)) {
		case ".json", ".yaml", ".yml":
		default:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("input: extension %q is unusual, expected .json, .yaml or .yml; the document will be read as YAML", filepath.Ext(c.Input)))
		}
	}

	// Output
	if c.Output == "" {
		result.Errors = append(result.Errors, "output: a directory is required")
	} else if c.Input != "" && filepath.Clean(c.Output) == filepath.Clean(filepath.Dir(c.Input)) {
		result.Warnings = append(result.Warnings,
			"output: generated files share a directory with the input document; stale .cs files there will be removed")
	}

	if c.Namespace != "" && !isIdentifierPath(c.Namespace) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("namespace: %q is not a valid C# namespace", c.Namespace))
	}

	// Handlers
	if c.Handlers.Enabled {
		if !isIdentifier(c.Handlers.ClassName) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("handlers.className: %q is not a valid C# identifier", c.Handlers.ClassName))
		}
		if filepath.Ext(c.Handlers.FileName) != ".cs" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("handlers.fileName: %q must end in .cs", c.Handlers.FileName))
		}
		if !slices.Contains(c.Handlers.Usings, "System.Threading.Tasks") {
			result.Warnings = append(result.Warnings,
				"handlers.usings: System.Threading.Tasks is missing; handler stubs return Task")
		}
	}

	for _, f := range c.Models.EnvelopeFields {
		if strings.TrimSpace(f) == "" {
			result.Errors = append(result.Errors, "models.envelopeFields: empty field name")
		}
	}

	if c.Diagnostics.Strict && c.Diagnostics.Quiet {
		result.Warnings = append(result.Warnings,
			"diagnostics: quiet drops warnings before strict can promote them")
	}

	if err := c.Validate(); err != nil && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, err.Error())
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func isIdentifierPath(s string) bool {
	for part := range strings.SplitSeq(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}
