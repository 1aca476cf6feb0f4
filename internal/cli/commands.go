package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repodoc/config"
)

func newNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new <path>",
		Short: "Walk a directory, save the intermediate file and analyze it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newController(cmd).New(cmd.Context(), args[0])
		},
	}
}

func newInterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inter",
		Short: "Analyze the files recorded in the intermediate file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newController(cmd).Inter(cmd.Context())
		},
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Re-analyze files changed since the final file was written",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newController(cmd).Update(cmd.Context())
		},
	}
}

func newFinalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "final",
		Short: "Show the final file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newController(cmd).Final(cmd.Context())
		},
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		// config init must not fail on a broken config file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
