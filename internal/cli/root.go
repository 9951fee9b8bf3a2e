package cli

import (
	"context"

	"github.com/metaschema/registry/internal/config"
	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/metrics"
	"github.com/metaschema/registry/internal/registry"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	envFile    string
	seedFile   string
	noDefaults bool
	logLevel   string
}

// NewRootCommand builds the metaregistry command tree
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "metaregistry",
		Short: "Metadata schema registry",
		Long: `metaregistry keeps metadata schemas, encoding schemes and controlled
vocabularies in memory, validates records against them and projects
schemas into serialization formats, code and documentation.

Configuration is read from METAREGISTRY_* environment variables, an
optional .env file and an optional YAML file. Flags override both.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "YAML configuration file")
	pf.StringVar(&g.envFile, "env-file", ".env", "environment file loaded before parsing (ignored when missing)")
	pf.StringVar(&g.seedFile, "seed", "", "additional seed file loaded after the built-in catalogs")
	pf.BoolVar(&g.noDefaults, "no-defaults", false, "do not load the built-in catalogs")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCommand(g),
		newValidateCommand(g),
		newRenderCommand(g),
		newDesignCommand(g),
		newVersionCommand(),
	)

	return cmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig loads configuration, applies the global flags and then any
// command-specific overrides before validating
func loadConfig(g *globalFlags, overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: g.configFile,
		EnvFile:    g.envFile,
	})
	if err != nil {
		return nil, err
	}

	if g.seedFile != "" {
		cfg.Registry.SeedFile = g.seedFile
	}
	if g.noDefaults {
		cfg.Registry.SeedDefaults = false
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initToolLogger sets up logging for one-shot commands. Their stdout carries
// the command output, so logs default to stderr.
func initToolLogger(cfg *config.Config) error {
	lc := cfg.LoggerConfig()
	if lc.Output == "" || lc.Output == "stdout" {
		lc.Output = "stderr"
	}
	return logger.Init(lc)
}

// newRegistry builds a registry from the configured seeds. m may be nil.
func newRegistry(cfg *config.Config, m *metrics.RegistryMetrics) (*registry.Registry, error) {
	var seed registry.Seed
	if cfg.Registry.SeedDefaults {
		seed = registry.DefaultSeed()
	}
	if cfg.Registry.SeedFile != "" {
		extra, err := registry.LoadSeed(cfg.Registry.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = seed.Merge(extra)
	}
	return registry.New(registry.WithSeed(seed), registry.WithMetrics(m))
}
