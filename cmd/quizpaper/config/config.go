// Package configcmder provides the config command for managing persistent
// quizpaper configuration stored in the .quizpaper/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/config"
)

const configLongDesc string = `Manage persistent quizpaper configuration.

Configuration is stored as config.toml in the .quizpaper/ directory and
provides default values for command flags. CLI flags and QUIZPAPER_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  provider.name, provider.upstream, provider.model, provider.api_key,
  generate.difficulty, generate.question_count,
  reveal.base_rate, reveal.backlog_threshold, reveal.max_boost,
  reveal.frame_interval,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  eventstream.kafka_brokers, eventstream.kafka_topic,
  api.listen

Use subcommands to get, set, or list configuration values:
  quizpaper config set <key> <value>    Set a configuration value
  quizpaper config get <key>            Get a configuration value
  quizpaper config list                 List all configuration values

Examples:
  quizpaper config set provider.name anthropic
  quizpaper config set reveal.base_rate 90
  quizpaper config get provider.model
  quizpaper config list`

const configShortDesc string = "Manage persistent quizpaper configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

// mask hides all but the last four characters of a secret value.
func mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}
