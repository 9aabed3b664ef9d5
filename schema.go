package clustergen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SchemaFileName is the name of the JSON Schema written next to the export
const SchemaFileName = "generation_specs.schema.json"

// JSONSchema describes ClusterID, which is a number or a string
func (ClusterID) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Cluster identifier; numeric labels stay numbers",
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "string"},
		},
	}
}

// SpecSchema returns the JSON Schema of the exported document
func SpecSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	specSchema := reflector.Reflect(&GenerationSpec{})
	specSchema.Version = ""
	specSchema.ID = ""
	if specSchema.Type == "" {
		specSchema.Type = "object"
	}

	doc := &jsonschema.Schema{
		Version:              jsonschema.Version,
		Title:                "Generation specs",
		Description:          "Generation specs keyed by cluster id",
		Type:                 "object",
		AdditionalProperties: specSchema,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Write the JSON Schema of generation_specs.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := writeSchema(Config.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("📐 Schema written", zap.String("path", path))
		return nil
	},
}

func writeSchema(dir string) (string, error) {
	data, err := SpecSchema()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, SchemaFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return path, nil
}
