package collection

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tbouvier/repolang/pkg/errs"
	"github.com/tbouvier/repolang/pkg/table"
)

const (
	// SummaryFileName is the summary CSV inside a snapshot folder.
	SummaryFileName = "repositories_summary.csv"
	// MatrixFolderName holds the per-repository matrix CSVs, one
	// subfolder per owner.
	MatrixFolderName = "language_matrices"
)

// Persist writes the store as a CSV folder snapshot under dir: the summary
// file at the top level and one matrix per repository under
// language_matrices/<owner>/<name>.csv. With clear set, dir is wiped first
// so the snapshot exactly mirrors the store.
func (s *Store) Persist(dir string, clear bool) error {
	if clear {
		if err := os.RemoveAll(dir); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "clearing snapshot folder")
		}
	}
	matrixDir := filepath.Join(dir, MatrixFolderName)
	if err := os.MkdirAll(matrixDir, 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "creating snapshot folder")
	}
	if err := s.summary.WriteFile(filepath.Join(dir, SummaryFileName)); err != nil {
		return err
	}
	for key, t := range s.matrices {
		owner, name, ok := strings.Cut(key, "/")
		if !ok {
			return errs.New(errs.ErrCodeInvalidRepo, "malformed repository key %q", key)
		}
		ownerDir := filepath.Join(matrixDir, owner)
		if err := os.MkdirAll(ownerDir, 0o755); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "creating owner folder for %s", key)
		}
		if err := t.WriteFile(filepath.Join(ownerDir, name+".csv")); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a snapshot folder back into a store. A missing folder or one
// without a summary file yields an empty store, so a fresh data directory
// works without special-casing. Matrices without a summary row, and summary
// rows without a matrix, are dropped to restore lockstep.
func Load(dir string) (*Store, error) {
	s := NewStore()

	summary, err := table.ReadFile(filepath.Join(dir, SummaryFileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, err
	}

	matrixDir := filepath.Join(dir, MatrixFolderName)
	owners, err := os.ReadDir(matrixDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "reading matrix folder")
	}
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(matrixDir, owner.Name()))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "reading matrices for %s", owner.Name())
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".csv") {
				continue
			}
			t, err := table.ReadFile(filepath.Join(matrixDir, owner.Name(), f.Name()))
			if err != nil {
				return nil, err
			}
			key := owner.Name() + "/" + strings.TrimSuffix(f.Name(), ".csv")
			s.matrices[key] = t
		}
	}

	keyed, err := summary.Column(KeyColumn)
	if err != nil {
		return nil, err
	}
	for i, key := range keyed {
		if _, ok := s.matrices[key]; !ok {
			continue
		}
		if err := s.summary.Append(summary.Row(i)); err != nil {
			return nil, err
		}
	}
	for key := range s.matrices {
		if !containsKey(keyed, key) {
			delete(s.matrices, key)
		}
	}
	return s, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
