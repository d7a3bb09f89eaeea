package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Service runs scheduled snapshots of the companion database.
type Service struct {
	dbPath    string
	dir       string
	interval  time.Duration
	retention Policy
	verifies  bool
	logger    *slog.Logger

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	lastRun  time.Time
	nextRun  time.Time

	now func() time.Time
}

// NewService validates the configuration and prepares the snapshot directory.
func NewService(cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Retention == (Policy{}) {
		cfg.Retention = DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	return &Service{
		dbPath:    cfg.DBPath,
		dir:       cfg.Dir,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		verifies:  cfg.Verify,
		logger:    logger,
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}, nil
}

// Run performs snapshots at the configured interval until the context is
// cancelled or Stop is called. It blocks; run it in a goroutine.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("backup service already running")
	}
	s.running = true
	s.nextRun = s.now().Add(s.interval)
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("backup service started", "interval", s.interval, "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("backup service stopping", "reason", "context cancelled")
			return ctx.Err()
		case <-s.stopCh:
			s.logger.Info("backup service stopping", "reason", "stop requested")
			return nil
		case <-ticker.C:
			result, err := s.SnapshotNow(ctx)
			if err != nil {
				s.logger.Error("scheduled snapshot failed", "error", err)
			} else {
				s.logger.Info("scheduled snapshot completed",
					"path", result.Path, "size", result.Size,
					"duration", result.Duration, "verified", result.Verified)
			}
			s.mu.Lock()
			s.nextRun = s.now().Add(s.interval)
			s.mu.Unlock()
		}
	}
}

// Stop ends the Run loop.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return fmt.Errorf("backup service not running")
	}
	close(s.stopCh)
	s.running = false
	return nil
}

// SnapshotNow takes an immediate snapshot, verifies it when configured, and
// applies the retention policy.
func (s *Service) SnapshotNow(ctx context.Context) (*Result, error) {
	start := s.now()

	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}

	name := fmt.Sprintf("maple-%s.db", start.Format("20060102-150405.000000"))
	path := filepath.Join(s.dir, name)

	if err := snapshot(s.dbPath, path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("statting snapshot: %w", err)
	}

	result := &Result{
		Path:     path,
		Duration: time.Since(start),
		Size:     info.Size(),
	}

	if s.verifies {
		if err := verify(path); err != nil {
			return nil, fmt.Errorf("verifying snapshot: %w", err)
		}
		result.Verified = true
	}

	s.mu.Lock()
	s.lastRun = s.now()
	s.mu.Unlock()

	if err := applyRetention(s.dir, s.retention, s.now()); err != nil {
		// Retention failure shouldn't fail the snapshot.
		s.logger.Warn("retention pass failed", "error", err)
	}
	return result, nil
}

// ListSnapshots returns all snapshots, newest first.
func (s *Service) ListSnapshots() ([]Info, error) {
	return listSnapshots(s.dir)
}

// Restore replaces the live database with a snapshot. The service must be
// stopped and the database closed first. The current database is snapshotted
// beforehand and rolled back to if the restore fails.
func (s *Service) Restore(ctx context.Context, snapshotPath string) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		return fmt.Errorf("cannot restore while backup service is running")
	}

	if _, err := os.Stat(snapshotPath); err != nil {
		return fmt.Errorf("snapshot not found: %w", err)
	}

	preRestore := s.dbPath + ".pre-restore"
	if _, err := os.Stat(s.dbPath); err == nil {
		if err := snapshot(s.dbPath, preRestore); err != nil {
			return fmt.Errorf("creating pre-restore snapshot: %w", err)
		}
		defer os.Remove(preRestore)
	}

	if err := restore(snapshotPath, s.dbPath); err != nil {
		if _, statErr := os.Stat(preRestore); statErr == nil {
			if rbErr := restore(preRestore, s.dbPath); rbErr != nil {
				return fmt.Errorf("restore and rollback both failed: %v (restore error: %w)", rbErr, err)
			}
			return fmt.Errorf("restore failed, rolled back: %w", err)
		}
		return err
	}

	s.logger.Info("database restored from snapshot", "path", snapshotPath)
	return nil
}

// HealthCheck reports service status for the health endpoint.
func (s *Service) HealthCheck() (*Health, error) {
	s.mu.Lock()
	lastRun, nextRun := s.lastRun, s.nextRun
	s.mu.Unlock()

	snapshots, err := s.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	used, err := diskUsage(s.dir)
	if err != nil {
		return nil, fmt.Errorf("calculating disk usage: %w", err)
	}

	health := &Health{
		Status:     "healthy",
		LastBackup: lastRun,
		NextBackup: nextRun,
		Snapshots:  len(snapshots),
		Dir:        s.dir,
		DiskUsed:   used,
	}

	switch {
	case lastRun.IsZero():
		health.Message = "no snapshots yet"
	case s.now().Sub(lastRun) > s.interval*2:
		health.Status = "warning"
		health.Message = fmt.Sprintf("snapshot overdue by %v", s.now().Sub(lastRun)-s.interval)
	default:
		health.Message = fmt.Sprintf("last snapshot %v ago", s.now().Sub(lastRun).Round(time.Minute))
	}
	return health, nil
}
