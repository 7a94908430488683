package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/metadata"
	"lexrag/internal/rag/pipeline"
	"lexrag/internal/rag/schema"
)

var (
	queryResults int
	queryChat    bool
	queryNoAI    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Query the corpus, one-shot or interactively",
	Long: `Query the legal document corpus. With a question argument a single
answer is printed; without one an interactive prompt starts. The --chat
flag keeps conversation history across interactive turns.`,
	Args: cobra.MaximumNArgs(1),
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

		if len(args) == 1 {
			return runQuery(cmd, tk, args[0])
		}
		return runInteractive(cmd, tk)
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryResults, "results", 5, "number of chunks to retrieve")
	queryCmd.Flags().BoolVar(&queryChat, "chat", false, "keep conversation history across interactive turns")
	queryCmd.Flags().BoolVar(&queryNoAI, "no-answer", false, "print retrieved chunks without generating an answer")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, tk *toolkit, question string) error {
	ctx := cmd.Context()

	retrieved, err := tk.retriever.Search(ctx, question, queryResults)
	if err != nil {
		return err
	}
	if len(retrieved.Results) == 0 {
		fmt.Println("No relevant documents found.")
		return nil
	}

	printResults(retrieved)

	if !queryNoAI {
		answer, err := tk.composer.Answer(ctx, question, retrieved.Results)
		if err != nil {
			return err
		}
		fmt.Printf("\nAnswer:\n%s\n", answer)
	}
	return nil
}

func runInteractive(cmd *cobra.Command, tk *toolkit) error {
	ctx := cmd.Context()
	scanner := bufio.NewScanner(os.Stdin)
	var history []interfaces.ChatMessage

	fmt.Println("Interactive query mode. Type 'exit' to quit.")
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		retrieved, err := tk.retriever.Search(ctx, question, queryResults)
		if err != nil {
			fmt.Printf("Search failed: %v\n", err)
			continue
		}
		if len(retrieved.Results) == 0 {
			fmt.Println("No relevant documents found.")
			continue
		}

		var answer string
		if queryChat {
			history = append(history, interfaces.ChatMessage{Role: "user", Content: question})
			answer, err = tk.composer.ChatAnswer(ctx, history, retrieved.Results)
			if err == nil {
				history = append(history, interfaces.ChatMessage{Role: "assistant", Content: answer})
			}
		} else {
			answer, err = tk.composer.Answer(ctx, question, retrieved.Results)
		}
		if err != nil {
			fmt.Printf("Answer generation failed: %v\n", err)
			continue
		}

		fmt.Printf("\n%s\n", answer)
		fmt.Printf("\nSources (confidence %.2f):\n", retrieved.Confidence)
		for _, cite := range retrieved.Citations {
			fmt.Printf("  [%d] %s (%.2f)\n", cite.Ordinal, cite.SourceLocation, cite.RelevanceScore)
		}
	}
}

func printResults(retrieved *pipeline.RetrievalResult) {
	fmt.Printf("Found %d relevant chunks (confidence %.2f):\n", len(retrieved.Results), retrieved.Confidence)
	for i, result := range retrieved.Results {
		fmt.Printf("\n[%d] %s (score %.2f)\n", i+1, pipeline.SourceLocation(result.ChunkRecord), result.RelevanceScore)
		if summary := describeCase(result.ChunkRecord); summary != "" {
			fmt.Printf("    %s\n", summary)
		}
		fmt.Printf("    %s\n", excerpt(result.Text, 200))
	}
}

// describeCase renders the extracted case metadata of a hit.
func describeCase(record schema.ChunkRecord) string {
	md := schema.ExtractedMetadata{
		CaseName:      record.CaseName,
		CaseNumber:    record.CaseNumber,
		Court:         record.Court,
		Judges:        record.Judges,
		JudgmentDate:  record.JudgmentDate,
		Citations:     record.Citations,
		SubjectMatter: record.SubjectMatter,
	}
	return metadata.FormatForDisplay(md)
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
