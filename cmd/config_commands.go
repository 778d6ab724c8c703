package cmd

import (
	"fmt"
	"io"
	"os"

	"shopdash/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateOwner string

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.shopdash.yaml
  shopdash config create

  # Create a config for another shop next to the binary
  shopdash --configFile ./.shopdash.yaml config create --owner shop-b
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(configCreateOwner)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active shopdash config file in your editor.

Editor selection order:
1) $VISUAL
2) $EDITOR
3) vi

If no config file exists yet, this command creates one with an example template first.
After the editor exits, the content is validated as shopdash YAML config.`,
	Example: `
  # Edit active config
  shopdash config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFileWithTemplate(configPath, "")
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("No config file found. Created example config at: %s\n", configPath)
		}

		editor := resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
		editorCommand, err := buildEditorCommand(editor, configPath)
		if err != nil {
			return err
		}
		editorCommand.Stdin = os.Stdin
		editorCommand.Stdout = os.Stdout
		editorCommand.Stderr = os.Stderr
		if err := editorCommand.Run(); err != nil {
			return fmt.Errorf("opening editor failed: %w", err)
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading edited config failed: %w", err)
		}
		if _, err := config.ValidateYAMLContent(content); err != nil {
			return fmt.Errorf("config validation failed in %s: %w", configPath, err)
		}

		fmt.Printf("Configuration saved and validated: %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Values coming from
SHOPDASH_* environment variables are shown as resolved.`,
	Example: `
  # Show active configuration
  shopdash config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		out := cmd.OutOrStdout()
		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Fprintln(out, "Config file loaded from:", configPath)
		} else {
			fmt.Fprintln(out, "No config file loaded, showing defaults and environment overrides.")
		}
		printConfig(out, cfg)
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by shopdash.

If no configuration file is active, the command returns an error. The database is not touched.`,
	Example: `
  # Delete active config
  shopdash config delete

  # Delete config at a custom path
  shopdash --configFile ./custom-shopdash.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("error deleting configuration file: %w", err)
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func saveDefaultConfig(ownerID string) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath, ownerID)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Printf("Config file already exists at: %s\n", configPath)
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "%s: %s\n", config.KeyOwnerID, cfg.Owner.ID)
	fmt.Fprintf(out, "%s: %s\n", config.KeyDatabasePath, cfg.Database.Path)
	fmt.Fprintf(out, "%s: %s\n", config.KeyCurrency, cfg.Currency)
	fmt.Fprintf(out, "%s: %s\n", config.KeyImportTimezone, cfg.Import.Timezone)
	fmt.Fprintf(out, "%s: %d\n", config.KeyImportMaxRows, cfg.Import.MaxRows)
	fmt.Fprintf(out, "%s: %d\n", config.KeyServerPort, cfg.Server.Port)
	fmt.Fprintf(out, "%s: %d\n", config.KeyRules, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		fmt.Fprintf(out, "rules[%d].name: %s\n", i, rule.Name)
		fmt.Fprintf(out, "rules[%d].mapper: %s\n", i, rule.Mapper)
		fmt.Fprintf(out, "rules[%d].file_template: %s\n", i, rule.FileTemplate)
	}
}

func init() {
	configCmd.AddCommand(configCreateCmd, configEditCmd, configShowCmd, configDeleteCmd)

	configCreateCmd.Flags().StringVar(&configCreateOwner, "owner", "", "Owner ID written into the new config (default \"default\")")
}
