package asyncapi

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
)

//go:embed document.schema.json
var documentSchema []byte

const documentSchemaURL = "https://asyncgen.dev/schemas/document.schema.json"

var structuralSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(documentSchemaURL, bytes.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("loading document schema: %w", err)
	}
	return compiler.Compile(documentSchemaURL)
})

// checkStructure validates the parts of the document asyncgen reads
// against the embedded structural schema.
func checkStructure(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	s, err := structuralSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("invalid document structure: %w", err)
	}
	return nil
}

// checkVersion accepts AsyncAPI 2.x documents.
func checkVersion(version string) error {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return fmt.Errorf("asyncapi version %q is not a semantic version", version)
	}
	if semver.Major(v) != "v2" {
		return fmt.Errorf("asyncapi version %q is not supported (want 2.x)", version)
	}
	return nil
}
