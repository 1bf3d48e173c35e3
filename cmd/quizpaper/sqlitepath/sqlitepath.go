// Package sqlitepath resolves where the SQLite paper store lives.
package sqlitepath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/quizpaper/pkg/dotdir"
)

// FileName is the SQLite database file inside the dot directory.
const FileName = "quizpaper.db"

// ResolveSQLitePath returns override when set, otherwise quizpaper.db in the
// resolved .quizpaper/ directory (see dotdir.Manager.Target).
func ResolveSQLitePath(override, configDir string) (string, error) {
	if p := strings.TrimSpace(override); p != "" {
		return p, nil
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving sqlite path: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}
