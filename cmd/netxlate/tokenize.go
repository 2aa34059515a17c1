package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netxlate/internal/diagfmt"
	"netxlate/internal/dialect"
	"netxlate/internal/driver"
	"netxlate/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <netlist>",
	Short: "Print the tagged words of every logical line",
	Long:  "Tokenize a netlist file and output its tokens. Included files are not followed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().StringP("input", "i", driver.AutoInput, "input dialect or auto")
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("failed to get input flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	if input == driver.AutoInput {
		input = driver.FallbackInput
		fs := source.NewFileSet()
		if id, err := fs.Load(filePath, 0); err == nil {
			if kind, _ := dialect.Detect(fs, id); kind != dialect.Unknown {
				input = kind.String()
			}
		}
	}

	result, err := driver.Tokenize(filePath, input, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	switch format {
	case "pretty":
		err = diagfmt.FormatTokensPretty(os.Stdout, result.Lines)
	case "json":
		err = diagfmt.FormatTokensJSON(os.Stdout, result.Lines)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	if result.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{Context: true})
	}
	return nil
}
