package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect prompt templates",
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesShowCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available prompt templates",
		Long: `List the built-in default template and any loaded from --templates-file.
Templates added through the MCP server exist only for the lifetime of that server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, registry, err := newServiceFromConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			def := registry.Default().Name
			for _, name := range registry.List() {
				if name == def {
					fmt.Fprintf(out, "  - %s (default)\n", name)
					continue
				}
				fmt.Fprintf(out, "  - %s\n", name)
			}
			return nil
		},
	}
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a template's prompt text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, registry, err := newServiceFromConfig()
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			tpl := registry.Get(name)
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", tpl.Name, tpl.Text)
			return nil
		},
	}
}
