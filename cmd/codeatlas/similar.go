package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagLine         int
	flagSimilarLimit int
)

var similarCmd = &cobra.Command{
	Use:   "similar <path>",
	Short: "Find code similar to the chunk at a file position",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	result, err := coord.FindSimilarCode(args[0], flagLine, flagSimilarLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Source: %s (lines %d-%d)\n", result.Source.File, result.Source.StartLine, result.Source.EndLine)
	if len(result.Matches) == 0 {
		fmt.Println("No similar chunks found.")
		return nil
	}
	for _, m := range result.Matches {
		fmt.Printf("  %.3f  %s:%d-%d\n", m.Similarity, m.Chunk.File, m.Chunk.StartLine, m.Chunk.EndLine)
		fmt.Printf("         %s\n", m.Reason)
	}
	return nil
}

func init() {
	similarCmd.Flags().IntVar(&flagLine, "line", 1, "1-based line number inside the chunk of interest")
	similarCmd.Flags().IntVar(&flagSimilarLimit, "limit", 5, "maximum number of similar chunks")
	rootCmd.AddCommand(similarCmd)
}
