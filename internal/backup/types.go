// Package backup provides scheduled snapshots of the companion database with
// tiered retention and integrity verification.
package backup

import "time"

// Config holds backup service configuration.
type Config struct {
	// DBPath is the SQLite database file to snapshot.
	DBPath string

	// Dir is where snapshots are written.
	Dir string

	// Interval between automated snapshots. Defaults to 24 hours.
	Interval time.Duration

	// Retention controls how many snapshots survive per age tier.
	Retention Policy

	// Verify runs an integrity check after each snapshot.
	Verify bool
}

// Policy defines how many snapshots to keep per age tier. Snapshots are
// bucketed by age: hourly under 24h, daily under 7d, weekly under 30d,
// monthly under a year. Anything older than a year is always removed.
type Policy struct {
	Hourly  int
	Daily   int
	Weekly  int
	Monthly int
}

// DefaultPolicy keeps 24 hourly, 7 daily, 4 weekly, and 12 monthly snapshots.
func DefaultPolicy() Policy {
	return Policy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}
}

// Info describes one snapshot file on disk.
type Info struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Result is the outcome of one snapshot run.
type Result struct {
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
	Size     int64         `json:"size"`
	Verified bool          `json:"verified"`
}

// Health summarizes the service for the /api/health endpoint.
type Health struct {
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	LastBackup time.Time `json:"last_backup,omitempty"`
	NextBackup time.Time `json:"next_backup,omitempty"`
	Snapshots  int       `json:"snapshots"`
	Dir        string    `json:"dir"`
	DiskUsed   int64     `json:"disk_used"`
}
