package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"research/config"
	"research/internal/adapter/embedding"
	"research/internal/adapter/store"
	"research/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding research.yaml and the store")
	query := flag.String("q", "", "Query to test")
	owner := flag.String("u", "", "Owner whose sources are searched")
	topK := flag.Int("k", 5, "Number of results")
	runs := flag.Int("n", 20, "Number of timed searches")
	flag.Parse()

	if *query == "" || *owner == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir . -u alice -q \"query\" [-k 5] [-n 20]")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	persister, err := store.OpenPersister(cfg.Store.Format, cfg.StorePath(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}

	loadStart := time.Now()
	st := store.NewRecordStore(persister, store.Options{Dimension: cfg.Store.Dimension})
	loadTime := time.Since(loadStart)
	defer st.Close()

	// No cache: every run pays for embedding and the full scan.
	svc := usecase.NewVectorService(st, embedding.NewLazyFromConfig(cfg.Embedding), usecase.ServiceOptions{})

	stats := st.Stats()
	fmt.Println("SIMILARITY SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Records:   %d total, %d for %s\n", stats.TotalRecords, stats.Owners[*owner], *owner)
	fmt.Printf("Dimension: %d\n", stats.Dimension)
	fmt.Printf("Load time: %s\n", loadTime)
	fmt.Println()

	initStart := time.Now()
	hits, err := svc.Search(*query, *owner, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("First search (includes provider init): %s\n", time.Since(initStart))

	durations := make([]time.Duration, 0, *runs)
	for i := 0; i < *runs; i++ {
		start := time.Now()
		if _, err := svc.Search(*query, *owner, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		durations = append(durations, time.Since(start))
	}

	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		fmt.Printf("Runs: %d  mean: %s  p50: %s  max: %s\n",
			len(durations), total/time.Duration(len(durations)),
			durations[len(durations)/2], durations[len(durations)-1])
	}

	fmt.Printf("\nQuery: %q\n", *query)
	fmt.Println(strings.Repeat("-", 70))
	for i, hit := range hits {
		fmt.Printf("%2d. %.4f  %-20s %s\n", i+1, hit.Score, hit.ID, hit.Title())
	}
}
