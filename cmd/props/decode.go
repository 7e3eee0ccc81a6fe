package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/props/internal/cli"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a JSON document against the declared models",
	Long: `Reads a JSON document from the file argument or stdin and decodes it.

With --model the document is decoded as that model. Otherwise the embedded class
tag is only honoured with --trusted; untrusted data decodes into a generic object
and a warning is reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		trusted, _ := cmd.Flags().GetBool("trusted")
		dump, _ := cmd.Flags().GetBool("dump")

		p, err := cli.Open(cmd.Context(), options(cmd))
		if err != nil {
			return err
		}

		data, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		obj, res, err := cli.Decode(p, data, model, trusted)
		if err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if dump {
			spew.Fdump(out, obj)
			return nil
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringP("model", "m", "", "Decode as this model, ignoring any class tag")
	decodeCmd.Flags().Bool("trusted", false, "Honour the class tag embedded in the data")
	decodeCmd.Flags().Bool("dump", false, "Print the decoded Go value instead of JSON")
}
