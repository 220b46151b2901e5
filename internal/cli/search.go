package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchText  string
	searchOwner string
	searchTopK  int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a user's sources by semantic similarity",
	Long: `Embed the query and rank the user's sources by cosine similarity.

Examples:
  research search -u alice -q "graph algorithms"
  research search -u alice -q "banking" -k 10 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVarP(&searchOwner, "user", "u", "", "owner whose sources are searched (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
	searchCmd.MarkFlagRequired("user")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	svc, err := openService(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	hits, err := svc.Search(searchText, searchOwner, topKOr(searchTopK, cfg))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(hits, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(hits), searchText)
	for i, hit := range hits {
		fmt.Printf("--- [%d] %s (%s, score: %.4f) ---\n", i+1, hit.Title(), hit.ID, hit.Score)
		text := hit.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}
	return nil
}
