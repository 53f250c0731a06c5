package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/config.schema.json
var configSchema []byte

//go:embed schema/rpm-metadata.schema.json
var rpmMetadataSchema []byte

// ValidateAgainstSchema validates JSON data against the schema registered
// under name. ref optionally selects a sub-schema, e.g. "#/definitions/asset".
func ValidateAgainstSchema(name string, schema, data []byte, ref string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("loading schema %s: %w", name, err)
	}
	sch, err := compiler.Compile(name + ref)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", name, err)
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("schema validation against %s failed: %w", name, err)
	}
	return nil
}

// ValidateConfigJSON validates the global tool configuration.
func ValidateConfigJSON(data []byte) error {
	return ValidateAgainstSchema("rpm-composer-config.json", configSchema, data, "")
}

// ValidateRPMMetadataJSON validates one member's package.metadata.rpm block.
func ValidateRPMMetadataJSON(data []byte) error {
	return ValidateAgainstSchema("rpm-metadata.json", rpmMetadataSchema, data, "")
}
