package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/metaschema/registry/internal/designer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDesignCommand(g *globalFlags) *cobra.Command {
	var (
		output string
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "design <requirements-file>",
		Short: "Draft a schema from a requirements file",
		Long: `Design reads domain requirements from a YAML or JSON file and prints a
draft schema. With --check the draft is also validated against the
configured catalogs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputJSON, outputYAML); err != nil {
				return err
			}

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if err := initToolLogger(cfg); err != nil {
				return err
			}

			req, err := readRequirements(args[0])
			if err != nil {
				return err
			}

			schema := designer.New().DesignSchema(cmd.Context(), req)
			if err := writeStructured(cmd.OutOrStdout(), output, schema); err != nil {
				return err
			}

			if !check {
				return nil
			}
			reg, err := newRegistry(cfg, nil)
			if err != nil {
				return err
			}
			result := reg.ValidateSchema(cmd.Context(), schema)
			if err := writeValidation(cmd.ErrOrStderr(), outputText, schema.ID, result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("drafted schema %s is invalid", schema.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format (json, yaml)")
	cmd.Flags().BoolVar(&check, "check", false, "validate the draft against the configured catalogs")

	return cmd
}

func readRequirements(path string) (designer.Requirements, error) {
	var req designer.Requirements

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read requirements file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("failed to parse requirements file %s: %w", path, err)
	}
	return req, nil
}
