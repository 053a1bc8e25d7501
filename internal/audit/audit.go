// Package audit writes the append-only audit trail. Rule faults, mock
// integrity violations, and configuration failures all land here with a
// timestamp and the acting identity.
package audit

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit record, serialized as a JSON line.
type Entry struct {
	ID           string `json:"id"`
	TimestampUTC string `json:"timestampUtc"`
	Actor        string `json:"actor"`
	Action       string `json:"action"`
	Detail       string `json:"detail,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Log appends entries to a single file. Safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog creates a log writing to path. The parent directory is created on
// first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one entry. ID, timestamp, and actor are filled in here.
func (l *Log) Append(action, detail string, err error) error {
	entry := Entry{
		ID:           uuid.NewString(),
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		Actor:        ActingIdentity(),
		Action:       action,
		Detail:       detail,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// ActingIdentity resolves who is running the tool: the SCRIPTGUARD_ACTOR
// override first, then the OS user.
func ActingIdentity() string {
	if actor := os.Getenv("SCRIPTGUARD_ACTOR"); actor != "" {
		return actor
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
