package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed code with a natural language query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	query := strings.Join(args, " ")
	results, err := coord.SemanticSearch(context.Background(), query, flagLimit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results. Run 'codeatlas index' first if the workspace is not indexed.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%2d. %s:%d-%d  (score %.3f)\n", r.Rank, r.FilePath, r.StartLine, r.EndLine, r.Score)
		if len(r.MatchedTerms) > 0 {
			fmt.Printf("    terms: %s\n", strings.Join(r.MatchedTerms, ", "))
		}
		for _, line := range strings.Split(r.Snippet, "\n") {
			fmt.Printf("    | %s\n", line)
		}
	}
	return nil
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
