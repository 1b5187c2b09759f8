package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// manifestFileName is written next to the summary CSV inside the data
// folder. The loader ignores it; it exists so a snapshot records which run
// produced it and how each query pass went.
const manifestFileName = "run.json"

// runManifest describes one collection run.
type runManifest struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Queries    []queryResult `json:"queries"`
}

// queryResult is the outcome of a single query pass.
type queryResult struct {
	Query     string `json:"query"`
	Sort      string `json:"sort,omitempty"`
	Processed int    `json:"processed"`
	Error     string `json:"error,omitempty"`
}

func newRunManifest() *runManifest {
	return &runManifest{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

func (m *runManifest) record(query, sort string, processed int, err error) {
	r := queryResult{Query: query, Sort: sort, Processed: processed}
	if err != nil {
		r.Error = err.Error()
	}
	m.Queries = append(m.Queries, r)
}

func (m *runManifest) finish() {
	now := time.Now().UTC()
	m.FinishedAt = &now
}

// write persists the manifest into the data folder.
func (m *runManifest) write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("write run manifest: %w", err)
	}
	return nil
}
