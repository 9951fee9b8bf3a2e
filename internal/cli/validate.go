package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/metaschema/registry/internal/registry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newValidateCommand(g *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a schema definition without registering it",
		Long: `Validate checks a YAML or JSON schema definition against the configured
catalogs and reports every problem found. The exit status is non-zero
when the schema is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if err := initToolLogger(cfg); err != nil {
				return err
			}

			schema, err := readSchemaFile(args[0])
			if err != nil {
				return err
			}

			reg, err := newRegistry(cfg, nil)
			if err != nil {
				return err
			}

			result := reg.ValidateSchema(cmd.Context(), schema)
			if err := writeValidation(cmd.OutOrStdout(), output, schema.ID, result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("schema %s is invalid", schema.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")

	return cmd
}

// readSchemaFile decodes a schema from YAML or JSON
func readSchemaFile(path string) (*registry.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schema registry.Schema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&schema); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("schema file %s is empty", path)
		}
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return &schema, nil
}

func writeValidation(w io.Writer, output, id string, result registry.ValidationResult) error {
	if output != outputText {
		return writeStructured(w, output, result)
	}
	if result.Valid {
		_, err := fmt.Fprintf(w, "schema %s is valid\n", id)
		return err
	}
	fmt.Fprintf(w, "schema %s is invalid:\n", id)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	return nil
}
