package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the full index for the workspace",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	root, err := workspaceRoot()
	if err != nil {
		return err
	}

	// Ctrl-C cancels the build; already-indexed documents are retained.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Indexing %s...\n", root)
	stats, err := coord.BuildFull(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d files (%d reused, %d failed) in %s\n",
		stats.FilesIndexed, stats.FilesReused, stats.FilesFailed, stats.Duration.Round(time.Millisecond))
	fmt.Printf("Extracted %d symbols, %d chunks\n", stats.SymbolsExtracted, stats.ChunksCreated)

	for _, msg := range stats.ErrorMessages {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
