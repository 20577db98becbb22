package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glintbot/glint/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage glint configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default global configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
			return nil
		}
		if err := config.Save(config.Default()); err != nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a global configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load("", nil, nil)
		if err != nil {
			cfg = config.Default()
		}
		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			exitCode = ExitUsageError
			return err
		}
		if err := config.Save(cfg); err != nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one effective configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := repoRoot()
		cfg, err := config.Load(root, nil, nil)
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}
		value, err := configValue(cfg, args[0])
		if err != nil {
			exitCode = ExitUsageError
			return err
		}
		fmt.Fprintln(os.Stdout, value)
		return nil
	},
}

func configValue(cfg config.Config, key string) (string, error) {
	switch key {
	case "provider":
		return cfg.Provider, nil
	case "model":
		return cfg.Model, nil
	case "embedProvider":
		return cfg.EmbedProvider, nil
	case "embedModel":
		return cfg.EmbedModel, nil
	case "maxFindings":
		return fmt.Sprintf("%d", cfg.MaxFindings), nil
	case "retrievalK":
		return fmt.Sprintf("%d", cfg.RetrievalK), nil
	case "contextPadding":
		return fmt.Sprintf("%d", cfg.ContextPadding), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration for the current repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := repoRoot()
		cfg, err := config.Load(root, nil, nil)
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
