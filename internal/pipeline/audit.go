package pipeline

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// AuditRecord is one line of the skip/failure ledger the streaming integrator
// appends to. Code is set for typed unresolvable skips, Message for
// everything else.
type AuditRecord struct {
	CombinationID int       `json:"combination_id"`
	Stage         string    `json:"stage"`
	Entity        string    `json:"entity,omitempty"`
	Code          *int      `json:"code,omitempty"`
	Message       string    `json:"message,omitempty"`
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// AuditLog appends JSONL records to a single file across runs; RunID tells
// the runs apart when reading it back.
type AuditLog struct {
	mu    sync.Mutex
	path  string
	runID string
}

func NewAuditLog(path, runID string) (*AuditLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &AuditLog{path: path, runID: runID}, nil
}

func (a *AuditLog) Record(rec AuditRecord) error {
	rec.RunID = a.runID
	rec.Timestamp = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// Indices returns the distinct combination indices recorded so far, sorted
// ascending. A missing file is an empty ledger.
func (a *AuditLog) Indices() ([]int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	seen := make(map[int]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec AuditRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		seen[rec.CombinationID] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}
