/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/dbcport/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default dbcport configuration",
	Long: `Write a configuration file with default settings.

This command will:
- Create the configuration directory
- Point descriptors, DBC files, the schema document and the sinks below --base-dir
- Leave an existing configuration alone unless --force is given

Examples:
	  dbcport init
	  dbcport init --base-dir ./work --config ./dbcport.yaml`,
	// the config file may not exist yet
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		baseDir, _ := cmd.Flags().GetString("base-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		created, err := initConfig(configPath, baseDir, force)
		if err != nil {
			return err
		}
		if !created {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cmd.Printf("✅ Configuration created at %s\n", configPath)
		cmd.Printf("\nNext steps:\n")
		cmd.Printf("  dbcport schema build --config %s\n", configPath)
		cmd.Printf("  dbcport import --config %s\n", configPath)
		return nil
	},
}

// initConfig bootstraps the configuration at configPath. It reports false
// without touching the file when one exists and force is not set.
func initConfig(configPath, baseDir string, force bool) (bool, error) {
	if config.ConfigExists(configPath) && !force {
		return false, nil
	}
	if _, err := config.BootstrapConfig(configPath, baseDir); err != nil {
		return false, err
	}
	return true, nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("base-dir", "", "Directory the generated paths are placed under")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
