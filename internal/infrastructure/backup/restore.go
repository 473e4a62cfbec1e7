// Package backup restores the operational database from an object-store
// backup so its tables can be exported for processing.
package backup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/db/postgres"
)

// Restorer downloads a .bkp Postgres dump and restores it into the
// configured database via pg_restore.
type Restorer struct {
	db   postgres.Config
	http *http.Client
	log  zerolog.Logger
}

func NewRestorer(db postgres.Config, log zerolog.Logger) *Restorer {
	return &Restorer{
		db:   db,
		http: &http.Client{Timeout: 10 * time.Minute},
		log:  log,
	}
}

// Download streams the backup at url into a temp file and returns its
// path. The caller removes the file when done.
func (r *Restorer) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download backup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download backup: unexpected status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp("", "shipments-*.bkp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write backup: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close backup file: %w", closeErr)
	}

	r.log.Info().Str("path", f.Name()).Int64("bytes", n).Msg("backup downloaded")
	return f.Name(), nil
}

// Restore replays the dump into the target database. The dump carries its
// own DDL; --clean drops existing objects first so a re-restore is
// idempotent.
func (r *Restorer) Restore(ctx context.Context, bkpPath string) error {
	args := []string{
		"--clean", "--if-exists", "--no-acl", "--no-owner",
		"-h", r.db.Host,
		"-p", fmt.Sprintf("%d", r.db.Port),
		"-U", r.db.User,
		"-d", r.db.Database,
		bkpPath,
	}

	cmd := exec.CommandContext(ctx, "pg_restore", args...)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.db.Password)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pg_restore: %w: %s", err, out)
	}

	r.log.Info().Str("database", r.db.Database).Msg("backup restored")
	return nil
}
