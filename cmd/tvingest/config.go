package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the tvingest configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented example config",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the active config",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			return err
		}
		path = discovered
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if errs := loaded.Validate(); len(errs) > 0 {
		return &config.ConfigError{Path: path, Errors: errs}
	}
	fmt.Printf("%s: ok\n", path)
	return nil
}
