package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"research/internal/adapter/fs"
	"research/internal/usecase"
)

var importOwner string

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Bulk-import local text files as sources",
	Long: `Walk a directory and upsert every file matching the configured include
globs as a source of the given user. The relative path is the document id,
so importing the same tree again replaces the earlier records.

Examples:
  research import ./notes -u alice
  research import -u alice            # import current directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importOwner, "user", "u", "", "owner of the imported sources (required)")
	importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	svc, err := openService(cfg, GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	walker := fs.NewWalker(cfg.Import.Includes, cfg.Import.Excludes)
	importUC := usecase.NewImportUseCase(svc, walker, cfg.Import.MaxTextChars)

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	var startTime time.Time
	progress := func(processed, total int, currentFile string) {
		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Importing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)

		if processed > 0 && processed < total {
			rate := float64(processed) / time.Since(startTime).Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-processed)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Importing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	result, err := importUC.Import(path, importOwner, progress)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("\nImport complete:\n")
	fmt.Printf("  Files imported: %d\n", result.FilesImported)
	fmt.Printf("  Files skipped:  %d (empty)\n", result.FilesSkipped)
	fmt.Printf("  Model:          %s\n", svc.ModelName())

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
