package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tbouvier/repolang/pkg/collection"
)

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize a collected data folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := collection.Load(dataDir)
			if err != nil {
				return fmt.Errorf("load data folder %s: %w", dataDir, err)
			}

			rows := 0
			for _, key := range store.Keys() {
				if m, ok := store.Matrix(key); ok {
					rows += m.Len()
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "data folder:   %s\n", dataDir)
			fmt.Fprintf(cmd.OutOrStdout(), "repositories:  %d\n", store.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "matrix rows:   %d\n", rows)

			if m, err := readManifest(dataDir); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "last run:      %s (started %s)\n",
					m.ID, m.StartedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataDir, "data-dir", "d", "data", "data folder to inspect")
	return cmd
}

// readManifest reads the run manifest of a data folder, if one exists.
func readManifest(dir string) (*runManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("read run manifest: %w", err)
	}
	var m runManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode run manifest: %w", err)
	}
	return &m, nil
}
