package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ingestLockDirName   = ".ingest.lock"
	ingestLockOwnerFile = "owner.json"
)

// IngestLock guards a playlist directory against concurrent ingestion from a
// second process. The lock is a directory, created atomically by mkdir.
type IngestLock struct {
	lockDir string
}

type ingestLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

func AcquireIngestLock(playlistDir string) (IngestLock, error) {
	target := strings.TrimSpace(playlistDir)
	if target == "" {
		return IngestLock{}, fmt.Errorf("playlist directory is required")
	}

	lockDir := filepath.Join(target, ingestLockDirName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			ownerPath := filepath.Join(lockDir, ingestLockOwnerFile)
			var owner ingestLockOwner
			if readErr := ReadJSON(ownerPath, &owner); readErr == nil && owner.PID > 0 && owner.CreatedAt != "" {
				return IngestLock{}, fmt.Errorf(
					"playlist directory is locked: %s (pid=%d created_at=%s host=%s)",
					target, owner.PID, owner.CreatedAt, owner.Hostname,
				)
			}
			return IngestLock{}, fmt.Errorf("playlist directory is locked: %s", target)
		}
		return IngestLock{}, fmt.Errorf("acquire ingest lock for %s: %w", target, err)
	}

	owner := ingestLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	ownerPath := filepath.Join(lockDir, ingestLockOwnerFile)
	if err := WriteJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return IngestLock{}, fmt.Errorf("write ingest lock owner for %s: %w", target, err)
	}

	return IngestLock{lockDir: lockDir}, nil
}

func (l IngestLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, ingestLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release ingest lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
