package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/asyncgen/asyncgen/internal/schema"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

func (s Severity) level() zerolog.Level {
	switch s {
	case SeverityError:
		return zerolog.ErrorLevel
	case SeverityWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategorySchemaMapping      Category = "schema-mapping"
	CategoryCyclicSchema       Category = "cyclic-schema"
	CategoryInconsistentSource Category = "inconsistent-source"
	CategoryEmptyInput         Category = "empty-input"
	CategoryUnknownPassthrough Category = "unknown-passthrough"
	CategoryConfigInvalid      Category = "config-invalid"
	CategoryDocumentInvalid    Category = "document-invalid"
	CategorySkipped            Category = "skipped"
)

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	Subject  string // entity, member or channel name
	Pointer  string // location in the source document
	Message  string
	Hint     string // optional suggestion for fixing the issue
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.Subject != "" {
		sb.WriteString(d.Subject)
		if d.Pointer != "" {
			fmt.Fprintf(&sb, " (%s)", d.Pointer)
		}
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Message)

	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}

	return sb.String()
}

// Collector collects diagnostics during generation.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings and infos
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		strict: strict,
		quiet:  quiet,
	}
}

func (c *Collector) add(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

func (c *Collector) warnSeverity() Severity {
	if c.strict {
		return SeverityError
	}
	return SeverityWarning
}

// Warn adds a warning diagnostic.
func (c *Collector) Warn(category Category, subject, message string) {
	if c == nil || c.quiet {
		return
	}
	c.add(Diagnostic{Severity: c.warnSeverity(), Category: category, Subject: subject, Message: message})
}

// WarnWithHint adds a warning with a suggestion.
func (c *Collector) WarnWithHint(category Category, subject, pointer, message, hint string) {
	if c == nil || c.quiet {
		return
	}
	c.add(Diagnostic{
		Severity: c.warnSeverity(),
		Category: category,
		Subject:  subject,
		Pointer:  pointer,
		Message:  message,
		Hint:     hint,
	})
}

// Error adds an error diagnostic.
func (c *Collector) Error(category Category, subject, message string) {
	if c == nil {
		return
	}
	c.add(Diagnostic{Severity: SeverityError, Category: category, Subject: subject, Message: message})
}

// Info adds an informational diagnostic.
func (c *Collector) Info(category Category, subject, message string) {
	if c == nil || c.quiet {
		return
	}
	c.add(Diagnostic{Severity: SeverityInfo, Category: category, Subject: subject, Message: message})
}

// Report records err, classified by the schema error it wraps. Joined
// errors are reported one by one. Inconsistent-source warnings are
// warnings; everything else is an error.
func (c *Collector) Report(err error) {
	if c == nil || err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			c.Report(e)
		}
		return
	}

	var (
		mapping *schema.MappingError
		cyclic  *schema.CyclicError
		source  *schema.InconsistentSourceWarning
		empty   *schema.EmptyInputError
	)
	switch {
	case errors.As(err, &source):
		c.WarnWithHint(CategoryInconsistentSource, "", "", err.Error(),
			"split the channels into one document per exchange")
	case errors.As(err, &cyclic):
		c.Error(CategoryCyclicSchema, cyclic.Path[0], err.Error())
	case errors.As(err, &mapping):
		c.add(Diagnostic{
			Severity: SeverityError,
			Category: CategorySchemaMapping,
			Subject:  mapping.Name,
			Pointer:  mapping.Pointer,
			Message:  err.Error(),
		})
	case errors.As(err, &empty):
		c.Error(CategoryEmptyInput, "", err.Error())
	default:
		c.Error(CategoryDocumentInvalid, "", err.Error())
	}
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

func (c *Collector) count(sev Severity) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.diagnostics {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Log writes every diagnostic to logger at a level matching its severity.
func (c *Collector) Log(logger zerolog.Logger) {
	if c == nil {
		return
	}
	for _, d := range c.diagnostics {
		ev := logger.WithLevel(d.Severity.level()).Str("category", string(d.Category))
		if d.Subject != "" {
			ev = ev.Str("subject", d.Subject)
		}
		if d.Pointer != "" {
			ev = ev.Str("pointer", d.Pointer)
		}
		if d.Hint != "" {
			ev = ev.Str("hint", d.Hint)
		}
		ev.Msg(d.Message)
	}
}

// Summary returns a summary line like "2 warning(s), 1 error(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	warnings := c.WarningCount()
	errCount := c.ErrorCount()

	parts := []string{}
	if errCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errCount))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
