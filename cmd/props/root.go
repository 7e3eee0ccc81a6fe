package main

import (
	"fmt"
	"os"

	"github.com/aretw0/props/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "props",
	Short: "props declares typed models and serializes them to plain data",
	Long: `props loads model definitions (a YAML/JSON file or a directory of Markdown documents)
and decodes, inspects and stores plain JSON data against them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("defs", "d", "", "Model definitions: a .yaml/.json file or a directory of documents")
	rootCmd.PersistentFlags().String("class-key", "", "Reserved key holding the class tag (default \"__class__\")")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	defs, _ := cmd.Flags().GetString("defs")
	classKey, _ := cmd.Flags().GetString("class-key")
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return cli.Options{
		Defs:      defs,
		ClassKey:  classKey,
		LogLevel:  level,
		LogFormat: format,
	}
}
