package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"research/internal/usecase"
)

var (
	contextQuery  string
	contextOwner  string
	contextTopK   int
	contextOutput string
	contextJSON   bool
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Build the retrieval context block fed to the chat model",
	Long: `List all of the user's sources as a library overview, then search them
and render the best matches as "Source: <title> / Content: <text>" blocks
for LLM consumption.

Examples:
  research context -u alice -q "how do graph databases scale"
  research context -u alice -q "banking" --json -o context.json`,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVarP(&contextQuery, "query", "q", "", "search query (required)")
	contextCmd.Flags().StringVarP(&contextOwner, "user", "u", "", "owner whose sources are searched (required)")
	contextCmd.Flags().IntVarP(&contextTopK, "top-k", "k", 0, "number of sources (default from config)")
	contextCmd.Flags().StringVarP(&contextOutput, "output", "o", "", "output file (default: stdout)")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output as JSON")
	contextCmd.MarkFlagRequired("query")
	contextCmd.MarkFlagRequired("user")
}

func runContext(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	svc, err := openService(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	builder := usecase.NewContextBuilder(svc, svc, cfg.Search.MinScore, cfg.Search.ContextMaxChars)
	result, err := builder.Build(contextQuery, contextOwner, topKOr(contextTopK, cfg))
	if err != nil {
		return err
	}

	output := result.Library + "\n" + result.Context
	if contextJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		output = string(data)
	}

	if contextOutput != "" {
		if err := os.WriteFile(contextOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Context written to %s (%d sources)\n", contextOutput, len(result.Titles))
		return nil
	}
	fmt.Println(output)
	return nil
}
