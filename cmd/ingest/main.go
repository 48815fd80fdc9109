// Command ingest runs the data pipeline once and prints per-group summary
// statistics. Useful for checking a data directory before serving it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/dataprocessing"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/infrastructure"
)

func main() {
	dir := flag.String("dir", "", "data directory (defaults to the configured paths.data_dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Paths.DataDir = *dir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	snap, err := dataprocessing.NewLoader(cfg, logger).Load(context.Background())
	if err != nil {
		logger.Error("ingestion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("run %s: %d environmental rows, %d growth rows, %d warnings\n",
		snap.RunID, len(snap.Env.Rows), len(snap.Growth.Rows), len(snap.Warnings))
	for _, w := range snap.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	order := cfg.GroupNames()

	fmt.Println("\nenvironmental means:")
	for _, stats := range dataprocessing.GroupMeans(snap.Env.Rows, order) {
		fmt.Printf("  %-8s rows=%-5d temp=%.1f humidity=%.1f ph=%.2f ec=%.2f (target %.1f)\n",
			stats.Group, stats.Count,
			stats.Means[dataprocessing.ColTemperature],
			stats.Means[dataprocessing.ColHumidity],
			stats.Means[dataprocessing.ColPH],
			stats.Means[dataprocessing.ColEC],
			stats.Means[dataprocessing.ColTargetEC])
	}

	fmt.Println("\ngrowth means:")
	for _, stats := range dataprocessing.GroupMeans(snap.Growth.Rows, order) {
		fmt.Printf("  %-8s rows=%-5d fresh_weight=%.1fg leaves=%.1f shoot=%.1fcm\n",
			stats.Group, stats.Count,
			stats.Means[dataprocessing.ColFreshWeight],
			stats.Means[dataprocessing.ColLeafCount],
			stats.Means[dataprocessing.ColShootLength])
	}

	if best, mean, ok := dataprocessing.BestGroup(snap.Growth.Rows, dataprocessing.ColFreshWeight, order); ok {
		fmt.Printf("\nbest mean fresh weight: %s (%.1fg)\n", best, mean)
	}
}
