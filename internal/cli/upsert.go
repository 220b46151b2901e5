package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	upsertOwner    string
	upsertTitle    string
	upsertText     string
	upsertTextFile string
)

var upsertCmd = &cobra.Command{
	Use:   "upsert <doc-id>",
	Short: "Index or re-index a source",
	Long: `Embed "<title>: <text>" and store it under doc-id, replacing any earlier
record with the same id.

Examples:
  research upsert d1 -u alice -t "Paper A" --text "about graphs"
  research upsert d2 -u alice -t "Paper B" --file abstract.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runUpsert,
}

func init() {
	rootCmd.AddCommand(upsertCmd)
	upsertCmd.Flags().StringVarP(&upsertOwner, "user", "u", "", "owner of the source (required)")
	upsertCmd.Flags().StringVarP(&upsertTitle, "title", "t", "Untitled", "source title")
	upsertCmd.Flags().StringVar(&upsertText, "text", "", "source text")
	upsertCmd.Flags().StringVarP(&upsertTextFile, "file", "f", "", "read source text from file")
	upsertCmd.MarkFlagRequired("user")
	upsertCmd.MarkFlagsMutuallyExclusive("text", "file")
}

func runUpsert(cmd *cobra.Command, args []string) error {
	text := upsertText
	if upsertTextFile != "" {
		data, err := os.ReadFile(upsertTextFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", upsertTextFile, err)
		}
		text = string(data)
	}

	svc, err := openService(GetConfig(), GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Upsert(args[0], upsertOwner, upsertTitle, text); err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	fmt.Printf("Upserted %s for %s\n", args[0], upsertOwner)
	return nil
}
