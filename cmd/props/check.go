package main

import (
	"fmt"

	"github.com/aretw0/props/internal/cli"
	"github.com/aretw0/props/internal/validator"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [defs]",
	Short: "Check model definitions for consistency",
	Long: `Loads and declares the definitions, reporting unknown types, duplicate names and invalid defaults.
With --root, also reports models that none of the root models can reach.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		if len(args) > 0 {
			opts.Defs = args[0]
		}
		if opts.Defs == "" {
			return fmt.Errorf("no definitions given (use --defs or pass a path)")
		}

		p, err := cli.Open(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		if roots, _ := cmd.Flags().GetStringSlice("root"); len(roots) > 0 {
			if err := validator.ValidateReachability(p.Codec.Registry(), roots...); err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Definitions are valid: %d models declared ✅\n", len(p.Models))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringSlice("root", nil, "Root models every other model must be reachable from")
}
