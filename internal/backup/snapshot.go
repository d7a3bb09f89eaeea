package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"
)

// snapshot writes a consistent copy of the database to destPath using
// VACUUM INTO, which is safe under WAL mode.
func snapshot(sourcePath, destPath string) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", sourcePath))
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("pinging source database: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		return fmt.Errorf("snapshotting database: %w", err)
	}
	return nil
}

// verify runs SQLite's integrity_check pragma against a snapshot.
func verify(path string) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("running integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// restore copies a verified snapshot over the live database file. The
// database must not be in use.
func restore(snapshotPath, targetPath string) error {
	if err := verify(snapshotPath); err != nil {
		return fmt.Errorf("verifying snapshot: %w", err)
	}

	src, err := os.Open(snapshotPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("creating target: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying snapshot: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return fmt.Errorf("syncing target: %w", err)
	}

	if err := verify(targetPath); err != nil {
		return fmt.Errorf("verifying restored database: %w", err)
	}
	return nil
}
