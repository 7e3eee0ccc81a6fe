package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/props"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of props",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("props version %s\n", strings.TrimSpace(props.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
