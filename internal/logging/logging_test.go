package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug().Msg("hidden")
	logger.Info().Str("entity", "Order").Msg("generated")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered at info level: %s", out)
	}
	if !strings.Contains(out, `"entity":"Order"`) || !strings.Contains(out, `"message":"generated"`) {
		t.Errorf("expected JSON fields in output, got %s", out)
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug().Msg("skipped alias")

	out := buf.String()
	if !strings.Contains(out, "skipped alias") {
		t.Errorf("expected message in console output, got %q", out)
	}
	if strings.Contains(out, `"message"`) {
		t.Errorf("console output should not be JSON, got %q", out)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", FormatJSON); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
}
