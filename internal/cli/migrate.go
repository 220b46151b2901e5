package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"research/internal/adapter/store"
)

var (
	migrateFrom string
	migrateTo   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert the store between on-disk formats",
	Long: `Read the complete record collection from one store and write it to
another. Locations are "format:path"; a bare path is a JSON file.

Examples:
  research migrate --from vectors.json --to bolt:.research/vectors.db
  research migrate --from bolt:old.db --to sqlite:.research/vectors.sqlite`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source store location (required)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination store location (required)")
	migrateCmd.MarkFlagRequired("from")
	migrateCmd.MarkFlagRequired("to")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	srcFormat, srcPath := store.ParseLocation(migrateFrom)
	dstFormat, dstPath := store.ParseLocation(migrateTo)
	if srcFormat == dstFormat && srcPath == dstPath {
		return fmt.Errorf("source and destination are the same store")
	}

	src, err := store.OpenPersister(srcFormat, srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	dst, err := store.OpenPersister(dstFormat, dstPath)
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	defer dst.Close()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Migrating"),
		progressbar.OptionSpinnerType(14),
	)
	result, err := store.Migrate(src, dst)
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("\nMigrated %d records\n  from: %s\n  to:   %s\n", result.Records, result.From, result.To)
	return nil
}
