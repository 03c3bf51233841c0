// Package cmd provides the command-line interface for demoapp.
//
// Configuration is read, highest priority first, from command-line flags,
// DEMOAPP_<SECTION>_<OPTION> environment variables and a .demoapp.yml file
// (or the file named by --config or DEMOAPP_CONFIG_FILE).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/demoapp/internal/config"
	"github.com/conneroisu/demoapp/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "demoapp",
	Short: "Demo and documentation server for the design system",
	Long: `demoapp serves the design system's component documentation, example and
test pages, and generated listings of the views tree.

Quick Start:
  demoapp serve                     Start the server on localhost:4000
  demoapp list components           List the components folder
  demoapp list --component datagrid List a component's examples and tests
  demoapp config show               Print the resolved configuration`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .demoapp.yml, can also use DEMOAPP_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv("DEMOAPP_CONFIG_FILE") != "":
		viper.SetConfigFile(os.Getenv("DEMOAPP_CONFIG_FILE"))
	default:
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".demoapp")
	}

	viper.SetEnvPrefix("DEMOAPP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
