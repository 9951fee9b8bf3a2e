package cli

import (
	"fmt"
	"strings"

	"github.com/metaschema/registry/internal/projection"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	format    string
	language  string
	framework string
	docs      bool
}

func newRenderCommand(g *globalFlags) *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <schema-id>",
		Short: "Render a registered schema",
		Long: `Render projects a schema from the configured catalogs into a
serialization format (--format), an implementation skeleton (--language),
a validation skeleton (--framework) or Markdown documentation (--docs).`,
		Example: `  metaregistry render dublin-core-basic --format xml
  metaregistry render dublin-core-basic --language go
  metaregistry render dublin-core-basic --framework zod
  metaregistry render dublin-core-basic --docs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if err := initToolLogger(cfg); err != nil {
				return err
			}

			reg, err := newRegistry(cfg, nil)
			if err != nil {
				return err
			}

			out, err := f.render(cmd, projection.NewEngine(reg), args[0])
			if err != nil {
				return err
			}
			if !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", string(projection.FormatJSON), "serialization format (json, xml, rdf, yaml)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "implementation language (typescript, python, java, go, csharp)")
	cmd.Flags().StringVar(&f.framework, "framework", "", "validation framework (json-schema, joi, yup, zod, pydantic)")
	cmd.Flags().BoolVar(&f.docs, "docs", false, "render Markdown documentation")
	cmd.MarkFlagsMutuallyExclusive("format", "language", "framework", "docs")

	return cmd
}

func (f *renderFlags) render(cmd *cobra.Command, e *projection.Engine, id string) (string, error) {
	ctx := cmd.Context()

	switch {
	case f.language != "":
		lang, err := projection.ParseLanguage(f.language)
		if err != nil {
			return "", err
		}
		return e.GenerateImplementation(ctx, id, lang)
	case f.framework != "":
		fw, err := projection.ParseFramework(f.framework)
		if err != nil {
			return "", err
		}
		return e.GenerateValidation(ctx, id, fw)
	case f.docs:
		doc, err := e.RenderDocumentation(ctx, id)
		if err != nil {
			return "", err
		}
		return doc.Markdown(), nil
	}

	format, err := projection.ParseFormat(f.format)
	if err != nil {
		return "", err
	}
	r, err := e.RenderSchema(ctx, id, format)
	if err != nil {
		return "", err
	}
	return r.Body, nil
}
