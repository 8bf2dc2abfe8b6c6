package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeatlas/pkg/types"
)

var flagFile string

var symbolCmd = &cobra.Command{
	Use:   "symbol [name]",
	Short: "Find symbols by name, or list the symbols in a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSymbol,
}

func runSymbol(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	var symbols []types.Symbol
	switch {
	case flagFile != "":
		symbols, err = coord.GetSymbolsInFile(flagFile)
		if err != nil {
			return err
		}
	case len(args) == 1:
		symbols = coord.SearchSymbolByName(args[0])
	default:
		return fmt.Errorf("provide a symbol name or --file")
	}

	printSymbols(symbols)
	return nil
}

func printSymbols(symbols []types.Symbol) {
	if len(symbols) == 0 {
		fmt.Println("No symbols found.")
		return
	}
	for _, sym := range symbols {
		fmt.Printf("%-10s %-30s %s:%d-%d (%s)\n",
			sym.Kind, sym.Name, sym.File, sym.StartLine, sym.EndLine, sym.Visibility)
	}
}

func init() {
	symbolCmd.Flags().StringVar(&flagFile, "file", "", "list symbols in this workspace-relative file")
	rootCmd.AddCommand(symbolCmd)
}
