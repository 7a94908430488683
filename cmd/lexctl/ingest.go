package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexrag/internal/rag/loaders"
)

var (
	ingestSource string
	ingestYear   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Ingest every PDF in a directory into the corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		if err := tk.store.EnsureCollection(ctx); err != nil {
			return err
		}

		dir := args[0]
		fmt.Printf("Ingesting PDFs from %s...\n", dir)

		docs, failed, err := loaders.LoadDirectory(ctx, dir, ingestSource, ingestYear)
		if err != nil {
			return err
		}

		total, failedDocs := tk.indexer.IndexAll(ctx, docs)
		failed = append(failed, failedDocs...)

		fmt.Printf("Done: %d documents, %d chunks added\n", len(docs)-len(failedDocs), total)
		if len(failed) > 0 {
			fmt.Printf("Failed: %d\n", len(failed))
			for _, f := range failed {
				fmt.Printf("  %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "SCOB", "source label stored with each document")
	ingestCmd.Flags().StringVar(&ingestYear, "year", "", "year label stored with each document")
	rootCmd.AddCommand(ingestCmd)
}
