// Package dotdir manages the .quizpaper/ and ~/.quizpaper directories.
//
// The directory holds config.toml, the SQLite paper store, the log file, raw
// generation transcripts and the parameters of the last generation.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the quizpaper directory.
	dirName = ".quizpaper"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .quizpaper/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.quizpaper/ dir
//  3. Home ~/.quizpaper/ dir, created if missing
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating quizpaper directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Subdir returns the absolute path of name inside the target directory,
// creating it if needed.
func (m *Manager) Subdir(overrideDir, name string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	sub := filepath.Join(dir, name)
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", sub, err)
	}
	return sub, nil
}

// localDirExists checks whether a .quizpaper/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
