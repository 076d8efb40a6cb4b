package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

// huntDir loads hunt definitions from the filesystem. Every backend
// embeds it: progress records live in the backend, hunt definitions
// always come from the data directory.
type huntDir struct {
	dataDir string
	logger  *slog.Logger
}

func newHuntDir(dataDir string, logger *slog.Logger) huntDir {
	if dataDir == "" {
		dataDir = "./data"
	}
	return huntDir{dataDir: dataDir, logger: logger}
}

// ListHunts returns hunt names mapped to their filenames. Files that
// fail to parse are skipped with a warning so one broken definition
// does not hide the rest.
func (h huntDir) ListHunts(ctx context.Context) (map[string]string, error) {
	huntsDir := filepath.Join(h.dataDir, "hunts")
	hunts := make(map[string]string)

	err := filepath.WalkDir(huntsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			h.logger.Warn("Failed to read hunt file", "path", path, "error", err)
			return nil
		}

		var def hunt.Hunt
		if err := json.Unmarshal(file, &def); err != nil {
			h.logger.Warn("Failed to unmarshal hunt file", "path", path, "error", err)
			return nil
		}

		hunts[def.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to walk hunts directory", "error", err)
		return nil, fmt.Errorf("failed to list hunts: %w", err)
	}

	return hunts, nil
}

// GetHunt loads and validates a hunt definition by filename. The
// filename is reduced to its base so callers cannot escape the hunts
// directory.
func (h huntDir) GetHunt(ctx context.Context, filename string) (*hunt.Hunt, error) {
	filename = filepath.Base(filename)
	path := filepath.Join(h.dataDir, "hunts", filename)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrHuntNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read hunt file: %w", err)
	}

	var def hunt.Hunt
	if err := json.Unmarshal(file, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hunt: %w", err)
	}
	def.FileName = filename
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hunt definition %s: %w", filename, err)
	}

	return &def, nil
}
