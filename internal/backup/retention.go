package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// listSnapshots returns every .db file in dir, newest first.
func listSnapshots(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}

	var snapshots []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Info{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// applyRetention buckets snapshots by age relative to now and removes the
// overflow beyond each tier's quota. Snapshots older than a year always go.
func applyRetention(dir string, policy Policy, now time.Time) error {
	snapshots, err := listSnapshots(dir)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	var hourly, daily, weekly, monthly []Info
	var toDelete []string

	for _, s := range snapshots {
		age := now.Sub(s.Timestamp)
		switch {
		case age < 24*time.Hour:
			hourly = append(hourly, s)
		case age < 7*24*time.Hour:
			daily = append(daily, s)
		case age < 30*24*time.Hour:
			weekly = append(weekly, s)
		case age < 365*24*time.Hour:
			monthly = append(monthly, s)
		default:
			toDelete = append(toDelete, s.Path)
		}
	}

	for _, tier := range []struct {
		snapshots []Info
		keep      int
	}{
		{hourly, policy.Hourly},
		{daily, policy.Daily},
		{weekly, policy.Weekly},
		{monthly, policy.Monthly},
	} {
		if len(tier.snapshots) > tier.keep {
			for _, s := range tier.snapshots[tier.keep:] {
				toDelete = append(toDelete, s.Path)
			}
		}
	}

	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("removing expired snapshots: %w", lastErr)
	}
	return nil
}

// diskUsage sums the size of all snapshots in dir.
func diskUsage(dir string) (int64, error) {
	snapshots, err := listSnapshots(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range snapshots {
		total += s.Size
	}
	return total, nil
}
