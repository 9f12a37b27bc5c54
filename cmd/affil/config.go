package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/affil/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration after environment overrides.

The config file lives at $XDG_CONFIG_HOME/affil/config.yml (or the path in
AFFIL_CONFIG). Keys:
  pdf_dir         Default PDF directory for 'affil open'
  countries_file  Countries CSV used when extract gets 3 arguments
  log_file        Default for --log-file
  db_path         SQLite index (AFFIL_DB overrides)
  pdf_reader      Viewer for 'affil open'
  name_fixes      Extra {from, to} replacements applied after the built-in
                  name fixes

Examples:
  affil config
  affil config db_path`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path     string         `json:"path"`
	Config   *config.Config `json:"config"`
	Database string         `json:"database"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		value, err := cfg.Get(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(map[string]string{args[0]: value})
	}

	if humanOutput {
		fmt.Printf("Config file: %s\n", config.Path())
		values := cfg.Values()
		for _, key := range config.Keys() {
			fmt.Printf("  %-15s %s\n", key+":", values[key])
		}
		for _, fix := range cfg.NameFixes {
			fmt.Printf("    %q -> %q\n", fix.From, fix.To)
		}
		return nil
	}
	return outputJSON(ConfigResponse{
		Path:     config.Path(),
		Config:   cfg,
		Database: cfg.DatabasePath(),
	})
}

// configHint returns the tip for creating a config file.
func configHint() string {
	return config.HelpfulConfigMessage()
}
