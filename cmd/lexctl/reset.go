package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the vector collection",
	Long:  `Drop the vector collection and recreate it empty. Every indexed chunk is lost; documents on disk are untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tk, err := newToolkit(ctx)
		if err != nil {
			return err
		}
		defer tk.close()

		if !resetYes {
			count, err := tk.store.Count(ctx)
			if err == nil {
				fmt.Printf("Collection %q holds %d chunks.\n", tk.cfg.Databases.Milvus.Collection, count)
			}
			fmt.Print("Drop and recreate it? [y/N] ")
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return scanner.Err()
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if answer != "y" && answer != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := tk.store.Drop(ctx); err != nil {
			return err
		}
		if err := tk.store.EnsureCollection(ctx); err != nil {
			return err
		}
		fmt.Println("Collection reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
