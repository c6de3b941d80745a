// internal/cli/config_show.go
package cli

import (
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/appconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the application configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		appconfig.ShowConfig(os.Stdout, cfgFile, cfg)
		if cfg != nil && cfg.Debug {
			pp.Println(cfg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
