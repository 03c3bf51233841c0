package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats understood by the listing and config commands.
var outputFormats = []string{"table", "json", "yaml"}

// StandardFlags are the flags shared between commands.
type StandardFlags struct {
	Port     int
	Host     string
	BasePath string

	Views  string
	Docs   string
	Static string

	OutputFormat string
}

// AddStandardFlags registers the requested flag groups on cmd.
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "paths":
			addPathFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 4000, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", "localhost", "Host to bind to")
	cmd.Flags().StringVar(&flags.BasePath, "base-path", "/", "Path prefix every link is rooted at")
}

func addPathFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVar(&flags.Views, "views", "app/views", "Views root")
	cmd.Flags().StringVar(&flags.Docs, "docs", "app/docs", "Generated documentation root")
	cmd.Flags().StringVar(&flags.Static, "static", "app/www", "Static files root")
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
}

// BindFlags binds the named flags of cmd to viper keys so that config files
// and environment variables fill in what was not given on the command line.
func BindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flagName, key := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding --%s to %s: %w", flagName, key, err)
		}
	}
	return nil
}

// AddFlagValidation checks every value given for flagName with validator.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort accepts 1-65535.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}

	return nil
}

// ValidateBasePath accepts paths that start and end with "/".
func ValidateBasePath(p string) error {
	if !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") {
		return fmt.Errorf("base path must start and end with /, got %q", p)
	}
	return nil
}

// ValidateFormat accepts one of the known output formats.
func ValidateFormat(format string) error {
	if slices.Contains(outputFormats, strings.ToLower(format)) {
		return nil
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s",
		format, strings.Join(outputFormats, ", "))
}
