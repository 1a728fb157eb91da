/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ssargent/boxprofile/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	Long: `Write the default boxprofile settings to the settings path.

The settings file holds the default profile type, auto update settings,
output extension, gzip level and logging options. Flags always win over it.

Examples:
  boxprofile init
  boxprofile init --settings ./boxprofile.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settingsPath, err := bindFlags(cmd)
		if err != nil {
			return err
		}

		return initializeSettings(cmd.OutOrStdout(), settingsPath, viper.GetBool("force"))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing settings file")
}

// initializeSettings writes the defaults unless a file exists and force is unset
func initializeSettings(out io.Writer, settingsPath string, force bool) error {
	if settingsPath == "" {
		settingsPath = config.GetDefaultConfigPath()
	}

	if config.ConfigExists(settingsPath) && !force {
		fmt.Fprintf(out, "Settings already exist at %s. Use --force to overwrite.\n", settingsPath)
		return nil
	}

	cfg, err := config.BootstrapConfig(settingsPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Settings written to %s\n", settingsPath)
	fmt.Fprintf(out, "Default profile type: %s\n", cfg.Profile.Type)
	fmt.Fprintf(out, "Output extension: %s\n", cfg.Output.Extension)
	return nil
}
