// Package initcmder provides the init command for initializing a local
// .quizpaper directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/config"
)

const (
	dirName        = ".quizpaper"
	fetchTimeout   = 10 * time.Second
	maxRemoteBytes = 1 << 20
)

const initLongDesc string = `Initialize a new .quizpaper/ directory in the current working directory.

Creates a local .quizpaper/ directory that takes precedence over the default
~/.quizpaper/ directory for configuration, stored papers, logs and
transcripts. A config.toml with default values is written unless one
already exists.

Use --preset to write a provider preset (openai, anthropic, ollama) or a
config.toml fetched from an http(s) URL. A preset always overwrites the
existing config.toml.

Examples:
  quizpaper init
  quizpaper init --preset openai
  quizpaper init --preset https://example.com/quizpaper/config.toml`

const initShortDesc string = "Initialize a local .quizpaper/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", fmt.Sprintf("Provider preset (%s) or URL of a config.toml", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func runInit(ctx context.Context, w io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	// Resolve the preset before touching the filesystem so a bad preset
	// leaves nothing behind.
	var cfg *config.Config
	switch {
	case isURL(preset):
		err = cliui.Step(w, "Fetching preset", func() error {
			var err error
			cfg, err = fetchRemoteConfig(ctx, preset)
			return err
		})
	case preset != "":
		cfg, err = config.PresetConfig(preset)
	}
	if err != nil {
		return err
	}

	dir := filepath.Join(cwd, dirName)
	info, err := os.Stat(dir)
	alreadyInitialized := err == nil && info.IsDir()

	if !alreadyInitialized {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .quizpaper directory: %w", err)
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch {
	case cfg != nil:
		if err := cfger.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s Wrote %s preset to %s\n", cliui.SuccessMark, cliui.NameStyle.Render(presetLabel(preset)), cfger.GetTarget())

	case !configExists(cfger.GetTarget()):
		if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
			return err
		}
	}

	if alreadyInitialized {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
		return nil
	}

	fmt.Fprintf(w, "Initialized .quizpaper directory: %s\n", dir)
	return nil
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func presetLabel(preset string) string {
	if isURL(preset) {
		return "remote"
	}
	return strings.ToLower(preset)
}

func configExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
