// Command maple-backup manages snapshots of the companion database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mapleai/maple/internal/backup"
	"github.com/mapleai/maple/internal/config"
	"github.com/mapleai/maple/internal/logging"
)

var (
	dbPath    = flag.String("db", "", "Path to database file (overrides config)")
	dir       = flag.String("dir", "", "Snapshot directory (overrides config)")
	interval  = flag.Duration("interval", 0, "Snapshot interval (overrides config)")
	verify    = flag.Bool("verify", true, "Verify snapshots after creation")
	oneshot   = flag.Bool("oneshot", false, "Take one snapshot and exit")
	restore   = flag.String("restore", "", "Restore the database from a snapshot and exit")
	healthCmd = flag.Bool("health", false, "Print service health and exit")
	listCmd   = flag.Bool("list", false, "List snapshots and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("failed to load config", err)
	}

	logger, closeLogs := logging.Setup(cfg.Logging.File, logging.ParseLevel(cfg.Logging.Level))
	defer closeLogs()
	slog.SetDefault(logger)

	dbPathFinal := cfg.Storage.DataPath + "/maple.db"
	if *dbPath != "" {
		dbPathFinal = *dbPath
	}
	dirFinal := cfg.Backup.Path
	if *dir != "" {
		dirFinal = *dir
	}
	intervalFinal := 24 * time.Hour
	if d, err := time.ParseDuration(cfg.Backup.Interval); err == nil {
		intervalFinal = d
	}
	if *interval > 0 {
		intervalFinal = *interval
	}

	service, err := backup.NewService(backup.Config{
		DBPath:   dbPathFinal,
		Dir:      dirFinal,
		Interval: intervalFinal,
		Verify:   *verify,
		Retention: backup.Policy{
			Hourly:  cfg.Backup.RetentionHourly,
			Daily:   cfg.Backup.RetentionDaily,
			Weekly:  cfg.Backup.RetentionWeekly,
			Monthly: cfg.Backup.RetentionMonthly,
		},
	}, logger)
	if err != nil {
		fatal("failed to create backup service", err)
	}

	ctx := context.Background()

	switch {
	case *restore != "":
		if err := service.Restore(ctx, *restore); err != nil {
			fatal("restore failed", err)
		}
		fmt.Println("database restored")

	case *healthCmd:
		printHealth(service)

	case *listCmd:
		printSnapshots(service)

	case *oneshot:
		result, err := service.SnapshotNow(ctx)
		if err != nil {
			fatal("snapshot failed", err)
		}
		fmt.Printf("snapshot written: %s (%.2f MB in %v, verified=%v)\n",
			result.Path, float64(result.Size)/(1024*1024), result.Duration, result.Verified)

	default:
		if err := service.Run(ctx); err != nil {
			fatal("backup service stopped", err)
		}
	}
}

func printHealth(service *backup.Service) {
	health, err := service.HealthCheck()
	if err != nil {
		fatal("health check failed", err)
	}

	fmt.Printf("Status: %s\n", health.Status)
	if health.Message != "" {
		fmt.Printf("Message: %s\n", health.Message)
	}
	fmt.Printf("Snapshots: %d\n", health.Snapshots)
	fmt.Printf("Disk Used: %.2f MB\n", float64(health.DiskUsed)/(1024*1024))
	fmt.Printf("Directory: %s\n", health.Dir)
	if !health.LastBackup.IsZero() {
		fmt.Printf("Last Snapshot: %s\n", health.LastBackup.Format(time.RFC3339))
	}
	if health.Status != "healthy" {
		os.Exit(1)
	}
}

func printSnapshots(service *backup.Service) {
	snapshots, err := service.ListSnapshots()
	if err != nil {
		fatal("failed to list snapshots", err)
	}
	if len(snapshots) == 0 {
		fmt.Println("no snapshots found")
		return
	}
	for _, s := range snapshots {
		fmt.Printf("%s  %.2f MB  %s\n",
			s.Timestamp.Format(time.RFC3339), float64(s.Size)/(1024*1024), s.Path)
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
