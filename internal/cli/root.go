// Package cli wires configuration, logging and the menu controller into
// cobra commands.
package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"repodoc/config"
	"repodoc/internal/analysis"
	"repodoc/internal/files"
	"repodoc/internal/llm"
	"repodoc/internal/menu"
	"repodoc/logging"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the repodoc command tree. Without a subcommand it
// shows the interactive menu.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repodoc",
		Short: "Document a source tree file by file with an LLM",
		Long: `repodoc walks a project directory, saves its structure to an
intermediate JSON file, then asks an LLM to describe every file and saves
the answers to a final JSON file. Interrupted runs resume from the
intermediate file, and updates only re-analyze files that changed.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newController(cmd).Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().String("config", "config.yaml", "Path to the config file")
	cmd.PersistentFlags().String("intermediate", "", "Intermediate file (default: files.intermediate from config)")
	cmd.PersistentFlags().String("final", "", "Final file (default: files.final from config)")
	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every question")

	cmd.AddCommand(newNewCommand())
	cmd.AddCommand(newInterCommand())
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newFinalCommand())
	cmd.AddCommand(newConfigCommand())

	return cmd
}

// setup loads .env, the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Could not load .env: %v", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	if err := config.LoadConfig(configPath); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("intermediate"); path != "" {
		config.AppConfig.Files.Intermediate = path
	}
	if path, _ := cmd.Flags().GetString("final"); path != "" {
		config.AppConfig.Files.Final = path
	}

	logging.InitLogger()

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	return nil
}

// newController builds a menu controller from the loaded configuration.
func newController(cmd *cobra.Command) *menu.Controller {
	cfg := config.AppConfig
	assumeYes, _ := cmd.Flags().GetBool("yes")

	return menu.NewController(menu.Options{
		In:               menu.NewStdinReader(cmd.InOrStdin()),
		Out:              cmd.OutOrStdout(),
		Walker:           files.NewWalker(files.OptionsFromConfig(cfg.Explorer)),
		NewAnalyzer:      analyzerFactory(cmd, cfg),
		IntermediatePath: cfg.Files.Intermediate,
		FinalPath:        cfg.Files.Final,
		AssumeYes:        assumeYes,
	})
}

func analyzerFactory(cmd *cobra.Command, cfg *config.Config) menu.AnalyzerFactory {
	return func(confirm analysis.Confirmer) (menu.Analyzer, error) {
		client, err := llm.New(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		return analysis.New(client, confirm, analysis.OptionsFromConfig(cfg)), nil
	}
}
