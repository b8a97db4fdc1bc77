// Package journal records the history of program runs.
package journal

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
	"gorm.io/plugin/soft_delete"

	"github.com/alpham/smalllang/lib"
)

// Entry is one recorded run. A run that failed keeps the output and bindings
// produced before the failure.
type Entry struct {
	ID         int64     `json:"id" gorm:"primarykey"`
	SourceHash string    `json:"source_hash" gorm:"index:idx_source_hash"`
	Name       string    `json:"name"`
	Source     string    `json:"-"`
	Output     string    `json:"output"`
	Result     int64     `json:"result"`
	Bindings   string    `json:"bindings"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at" gorm:"index:idx_started_at"`
	DurationNs int64     `json:"duration_ns"`

	Deleted soft_delete.DeletedAt `json:"-" gorm:"softDelete:flag;default:0"`
}

func (Entry) TableName() string {
	return "runs"
}

type Journal interface {
	Record(ctx context.Context, entry *Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	// Prune soft-deletes entries started before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

func Open(driver string, dsn string) (Journal, error) {
	switch driver {
	case DriverSqlite:
		return openSqlite(dsn)
	case DriverPostgres:
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown journal driver '%s'", driver)
	}
}

// HashSource returns the hex blake3 digest of source.
func HashSource(source string) string {
	h := blake3.New()
	_, _ = h.WriteString(source)
	return hex.EncodeToString(h.Sum(nil))
}

func NewEntry(name string, source string, output string, res lib.Result, runErr error, startedAt time.Time, duration time.Duration) (*Entry, error) {
	bindings := res.Env
	if bindings == nil {
		bindings = map[string]int64{}
	}
	b, err := json.Marshal(bindings)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		SourceHash: HashSource(source),
		Name:       name,
		Source:     source,
		Output:     output,
		Result:     res.Last,
		Bindings:   string(b),
		StartedAt:  startedAt.UTC(),
		DurationNs: int64(duration),
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	return entry, nil
}

// BindingsMap decodes the recorded bindings.
func (e *Entry) BindingsMap() (map[string]int64, error) {
	m := map[string]int64{}
	if e.Bindings == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(e.Bindings), &m); err != nil {
		return nil, err
	}
	return m, nil
}
