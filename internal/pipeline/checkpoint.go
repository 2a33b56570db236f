package pipeline

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Checkpoint persists the highest combination index fully processed by the
// streaming integrator. It is written only after the experiment landed, so a
// crash can repeat work but never skip it.
type Checkpoint struct {
	path string
}

func NewCheckpoint(path string) (*Checkpoint, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Checkpoint{path: path}, nil
}

// Load returns the saved index and whether one exists. A missing file is a
// fresh start, not an error.
func (c *Checkpoint) Load() (int, bool, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	index, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, err
	}
	return index, true, nil
}

func (c *Checkpoint) Save(index int) error {
	return os.WriteFile(c.path, []byte(strconv.Itoa(index)), 0o644)
}
