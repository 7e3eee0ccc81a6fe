package main

import (
	"os"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/cli"
	"github.com/aretw0/props/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the declared models",
	Long: `Prints the declared models as a markdown catalog (styled on terminals),
their canonical YAML/JSON definitions, a Mermaid class diagram or OpenAPI schemas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		highlight, _ := cmd.Flags().GetStringSlice("highlight")

		p, err := cli.Open(cmd.Context(), options(cmd))
		if err != nil {
			return err
		}
		return cli.RenderModels(cmd.OutOrStdout(), p, format, props.Version, tui.RendererFor(os.Stdout), highlight...)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Output format: markdown, yaml, json, mermaid or openapi")
	modelsCmd.Flags().StringSlice("highlight", nil, "Models to highlight in the mermaid diagram")
}
