package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record counts per user",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	svc, err := openService(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats := svc.Stats()
	if statsJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Store:     %s (%s)\n", cfg.StorePath(GetRootDir()), cfg.Store.Format)
	fmt.Printf("Records:   %d\n", stats.TotalRecords)
	fmt.Printf("Dimension: %d\n", stats.Dimension)

	owners := make([]string, 0, len(stats.Owners))
	for owner := range stats.Owners {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	for _, owner := range owners {
		fmt.Printf("  %-24s %d\n", owner, stats.Owners[owner])
	}
	return nil
}
