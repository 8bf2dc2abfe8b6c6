package main

import (
	"github.com/spf13/cobra"
)

var relatedCmd = &cobra.Command{
	Use:   "related <symbol-id>",
	Short: "Find symbols in files connected through the import graph",
	Long: `Find symbols declared in files reachable from the given symbol's file
by following import edges in either direction. Symbol identifiers have the
form file#name#startLine, as printed by 'codeatlas symbol'.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func runRelated(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	symbols, err := coord.FindRelatedSymbols(args[0])
	if err != nil {
		return err
	}

	printSymbols(symbols)
	return nil
}

func init() {
	rootCmd.AddCommand(relatedCmd)
}
