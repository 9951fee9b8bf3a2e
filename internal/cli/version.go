package cli

import (
	"fmt"

	"github.com/metaschema/registry/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}
			if output == outputText {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return err
			}
			return writeStructured(cmd.OutOrStdout(), output, version.Get())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")

	return cmd
}
