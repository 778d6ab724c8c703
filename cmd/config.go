package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage shopdash configuration file values.",
	Long: `Create, edit, display, and delete the shopdash configuration file.

The configuration stores the shop owner, storage and import settings:
- owner.id
- database.path
- currency
- import.timezone / import.max_rows
- server.port
- rules[].name / mapper / file_template

Every key can be overridden with a SHOPDASH_* environment variable (dots become
underscores, e.g. SHOPDASH_OWNER_ID), also from a .env file in the working directory.`,
	Example: `
  # Create default config in $HOME/.shopdash.yaml
  shopdash config create

  # Create config for a specific owner
  shopdash config create --owner shop-a

  # Show active config and source file
  shopdash config show

  # Open active config in editor (creates example if missing)
  shopdash config edit

  # Delete active config file
  shopdash config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
