package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"deutsch/src/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage deutsch configuration",
	Long: `Manage deutsch configuration settings.

Examples:
  deutsch config get quiz.rounds
  deutsch config set quiz.max_attempts 0
  deutsch config set ollama.model llama3.1
  deutsch config list
  deutsch config path
  deutsch config edit`,
}

// configGetCmd represents the config get command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		value, ok := settingsMap(settings)[args[0]]
		if !ok {
			return fmt.Errorf("key '%s' not found", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

// configSetCmd represents the config set command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if _, ok := settingsMap(config.DefaultSettings())[key]; !ok {
			return fmt.Errorf("unknown key '%s'", key)
		}

		// Keep numbers and booleans typed in the TOML file
		if b, err := strconv.ParseBool(value); err == nil {
			viper.Set(key, b)
		} else if n, err := strconv.Atoi(value); err == nil {
			viper.Set(key, n)
		} else {
			viper.Set(key, value)
		}

		configFile, err := configFilePath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
			return err
		}

		if err := viper.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Set %s = %v\n", key, value)
		fmt.Fprintf(out, "Config saved to %s\n", configFile)

		if _, err := config.LoadSettingsFrom(configFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		return nil
	},
}

// configListCmd represents the config list command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		flattened := settingsMap(settings)

		// Sort keys
		keys := make([]string, 0, len(flattened))
		for k := range flattened {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration settings:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s = %v\n", key, flattened[key])
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(out, "\nConfig file: %s\n", configFile)
		}
		return nil
	},
}

// configPathCmd represents the config path command
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file and history database locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := configFilePath()
		if err != nil {
			return err
		}
		dbPath, err := config.GetDatabasePath()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config:  %s\n", configFile)
		fmt.Fprintf(out, "history: %s\n", dbPath)
		return nil
	},
}

// configEditCmd represents the config edit command
var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file in your default editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := configFilePath()
		if err != nil {
			return err
		}
		if err := config.EnsureConfigDirs(); err != nil {
			return err
		}

		// Create empty file if it doesn't exist
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			if err := os.WriteFile(configFile, []byte("# deutsch configuration file\n"), 0644); err != nil {
				return err
			}
		}

		// Get editor from environment
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = os.Getenv("VISUAL")
		}
		if editor == "" {
			// Try common editors
			for _, e := range []string{"vim", "vi", "nano", "emacs"} {
				if _, err := exec.LookPath(e); err == nil {
					editor = e
					break
				}
			}
		}
		if editor == "" {
			return fmt.Errorf("no editor found; set $EDITOR or $VISUAL")
		}

		editorCmd := exec.Command(editor, configFile)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr

		if err := editorCmd.Run(); err != nil {
			return err
		}
		if _, err := config.LoadSettingsFrom(configFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		return nil
	},
}

// settingsMap flattens settings into the dot-notation keys used in config.toml
func settingsMap(s *config.Settings) map[string]interface{} {
	return flattenMap("", map[string]interface{}{
		"env": s.Env,
		"quiz": map[string]interface{}{
			"rounds":       s.Quiz.Rounds,
			"max_attempts": s.Quiz.MaxAttempts,
			"strict":       s.Quiz.Strict,
		},
		"ollama": map[string]interface{}{
			"url":         s.Ollama.URL,
			"model":       s.Ollama.Model,
			"timeout":     s.Ollama.Timeout.String(),
			"max_retries": s.Ollama.MaxRetries,
		},
		"database": map[string]interface{}{
			"path": s.Database.Path,
		},
	})
}

// flattenMap flattens a nested map into dot-notation keys
func flattenMap(prefix string, m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]interface{}:
			for k, val := range flattenMap(fullKey, v) {
				result[k] = val
			}
		case []interface{}:
			var items []string
			for _, item := range v {
				items = append(items, fmt.Sprintf("%v", item))
			}
			result[fullKey] = strings.Join(items, ", ")
		default:
			result[fullKey] = value
		}
	}

	return result
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
}
