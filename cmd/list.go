package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/demoapp/internal/config"
	"github.com/conneroisu/demoapp/internal/content"
	"github.com/conneroisu/demoapp/internal/listing"
)

var listCmd = &cobra.Command{
	Use:     "list [dir]",
	Aliases: []string{"l"},
	Short:   "Print the listing the server would show for a folder",
	Long: `Print the generated listing for a folder of the views tree, or with
--component the examples and tests of one component.

Examples:
  demoapp list components             # Same entries as /components/list
  demoapp list tests/tabs-module -o json
  demoapp list --component datagrid -o yaml`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return BindFlags(cmd, map[string]string{
			"views": "paths.views",
		})
	},
	RunE: runList,
}

var (
	listFlags     *StandardFlags
	listComponent string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output")
	listCmd.Flags().StringVar(&listFlags.Views, "views", "app/views", "Views root")
	listCmd.Flags().StringVarP(&listComponent, "component", "c", "", "List the examples and tests of this component")

	AddFlagValidation(listCmd, "output", ValidateFormat)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	builder := listing.NewBuilder(content.NewOSRepository(cfg.Paths.Views, logger), cfg.Server.BasePath, logger)

	var page listing.Page
	switch {
	case listComponent != "":
		page, err = builder.Component(cmd.Context(), listComponent)
	case len(args) == 1:
		page, err = builder.Directory(cmd.Context(), strings.Trim(args[0], "/")+"/")
	default:
		page, err = builder.Directory(cmd.Context(), "/")
	}
	if err != nil {
		return err
	}

	return writeListing(cmd.OutOrStdout(), page, listFlags.OutputFormat)
}

func writeListing(w io.Writer, page listing.Page, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(page)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(page)
	case "table", "":
		return writeListingTable(w, page)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeListingTable(w io.Writer, page listing.Page) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, page.Subtitle)
	fmt.Fprintln(tw, "TEXT\tHREF\tTYPE")
	fmt.Fprintln(tw, "----\t----\t----")
	for _, p := range page.Paths {
		kind := p.PageType
		if p.Icon == listing.FolderIcon {
			kind = "folder"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Text, p.Href, kind)
	}
	fmt.Fprintf(tw, "\nTotal: %d entries\n", len(page.Paths))

	return tw.Flush()
}
