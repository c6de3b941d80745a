// internal/cli/root.go
// Package cli wires the repolens commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/repolens/repolens/internal/appconfig"
	"github.com/repolens/repolens/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "repolens",
	Short: "repolens — LLM-driven repository analysis with a semantic grounding index",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		if !cmd.Flags().Changed("debug") {
			_ = cmd.Flags().Set("debug", fmt.Sprintf("%v", viper.GetBool("debug")))
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = cfgFile
		if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
			cfg.Debug = true
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// GetConfig returns the configuration loaded for the current invocation.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
}

// initConfig loads .env and points viper at the config file.
func initConfig() {
	_ = godotenv.Load()

	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("json")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Commands that need config fail in ensureConfigLoaded with a
		// clearer message.
		return
	}
}

func ensureConfigLoaded() error {
	if viper.ConfigFileUsed() != "" && len(viper.AllKeys()) > 0 {
		return nil
	}
	if _, err := os.Stat(cfgFile); err != nil {
		return fmt.Errorf("no configuration file found at %q", cfgFile)
	}
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file %q: %w", cfgFile, err)
	}
	return nil
}
