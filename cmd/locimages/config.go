package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"locimages/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage locimages configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (LOCIMAGES_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'locimages.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration including values from all sources:
  - Environment variables
  - Configuration file
  - Default values`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
}

const exampleConfig = `# locimages configuration file
#
# All options can also be set with environment variables prefixed with
# LOCIMAGES_, for example LOCIMAGES_REQUESTS_PER_MINUTE.

# loc.gov API settings
api:
  # HTTP timeout per request
  timeout: 30s

  # Results requested per page (the API caps this server-side)
  page_size: 100

  # User agent sent with every request
  user_agent: ""

# Rate limiting
rate_limit:
  # The documented loc.gov crawl limit is 80 requests per minute.
  # Exceeding it risks a one hour block.
  requests_per_minute: 80

# Retry and backoff
retry:
  # Cap on the exponential backoff delay
  max_delay: 4096s

  # Give up on a page after retrying this long (0 = never)
  max_elapsed: 2h

  # Randomness added to backoff delays, 0.0 to 1.0
  jitter_factor: 0.1

# Output formatting
output:
  # Emit aria2c input-file format instead of a plain URL list
  aria_format: true

  # Group aria2c downloads into per-collection directories
  group_by_collection: true

  # Root directory of aria2c downloads
  root_dir: "."

# Logging (always written to stderr; stdout carries the URL stream)
logging:
  level: "info"
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "locimages.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created %s\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	fmt.Print(string(data))
	return nil
}
