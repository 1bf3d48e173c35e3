// Package generatecmder provides the generate command, which streams a new
// quiz paper from the configured model and reveals it as it arrives.
package generatecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/quizpaper/cmd/quizpaper/storeopen"
	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/config"
	"github.com/papercomputeco/quizpaper/pkg/dotdir"
	"github.com/papercomputeco/quizpaper/pkg/eventstream"
	"github.com/papercomputeco/quizpaper/pkg/eventstream/kafka"
	"github.com/papercomputeco/quizpaper/pkg/eventstream/nop"
	"github.com/papercomputeco/quizpaper/pkg/generate"
	"github.com/papercomputeco/quizpaper/pkg/llm/provider"
	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/worker"
)

const generateLongDesc string = `Generate a vocabulary quiz paper.

The paper is streamed from the configured model provider and previewed while
it arrives: questions appear as soon as they are complete and the text is
revealed at a steady pace. Once the final paper has been revealed it is saved
to the paper store and, when Kafka brokers are configured, announced on the
event stream.

Without a terminal, or with --plain, the preview is written to stdout instead
of the full-screen view.

Examples:
  quizpaper generate "airport travel"
  quizpaper generate "kitchen" --words "kettle, sink, oven" -d beginner -n 10
  quizpaper generate --again
  quizpaper generate "job interview" --plain -p openai -m gpt-4o-mini`

const generateShortDesc string = "Generate a vocabulary quiz paper"

// flagKeys are the registry flags the generate command binds.
var flagKeys = []string{
	config.FlagProvider,
	config.FlagUpstream,
	config.FlagModel,
	config.FlagDifficulty,
	config.FlagQuestionCount,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

type generateCommander struct {
	configDir  string
	debug      bool
	plain      bool
	again      bool
	noSave     bool
	transcript bool
	words      string

	// Registry flag targets. The effective values are read back through
	// viper into cfg.
	providerName  string
	upstream      string
	model         string
	difficulty    string
	questionCount int
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	kafkaBrokers  string
	kafkaTopic    string

	cfg    *config.Config
	logger *slog.Logger
}

func NewGenerateCmd() *cobra.Command {
	cmder := &generateCommander{}

	cmd := &cobra.Command{
		Use:   "generate [theme]",
		Short: generateShortDesc,
		Long:  generateLongDesc,
		Args:  cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerName)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagDifficulty, &cmder.difficulty)
	config.AddIntFlag(cmd, config.Flags, config.FlagQuestionCount, &cmder.questionCount)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)

	cmd.Flags().StringVarP(&cmder.words, "words", "w", "", "Comma or space separated target words")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Write the preview to stdout instead of the full-screen view")
	cmd.Flags().BoolVar(&cmder.again, "again", false, "Repeat the previous generation's theme and words")
	cmd.Flags().BoolVar(&cmder.noSave, "no-save", false, "Do not store the generated paper")
	cmd.Flags().BoolVar(&cmder.transcript, "transcript", false, "Keep the raw model response under .quizpaper/transcripts")

	return cmd
}

func (c *generateCommander) run(ctx context.Context, theme string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ddm := dotdir.NewManager()
	params, err := c.params(ddm, theme)
	if err != nil {
		return err
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	interactive := !c.plain && tty

	logFile, err := c.openLog(ddm, interactive)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	revealCfg, err := c.cfg.RevealSettings()
	if err != nil {
		return err
	}

	p, err := provider.New(c.cfg.Provider.Name)
	if err != nil {
		return err
	}

	var transcript io.Writer
	if c.transcript {
		f, err := c.openTranscript(ddm)
		if err != nil {
			return err
		}
		defer f.Close()
		transcript = f
	}

	client, err := generate.NewClient(generate.Config{
		Provider:   p,
		Upstream:   c.cfg.Provider.Upstream,
		APIKey:     c.cfg.Provider.APIKey,
		Model:      c.cfg.Provider.Model,
		Transcript: transcript,
		Logger:     c.logger.With("component", "generate"),
	})
	if err != nil {
		return err
	}

	sess := &session{
		streamer: client,
		params:   params,
		reveal:   revealCfg,
		logger:   c.logger,
		now:      time.Now,
	}

	var saved chan worker.Result
	if !c.noSave {
		pool, closeStore, err := c.startPool(ctx, &saved)
		if err != nil {
			return err
		}
		defer closeStore()
		source := eventstream.EventSource{Provider: c.cfg.Provider.Name, Model: c.cfg.Provider.Model}
		sess.sink = newAttemptSink(pool, source, params)
		sess.saved = saved
	}

	var result *paper.Paper
	if interactive {
		result, err = runTUI(ctx, sess)
	} else {
		width := 0
		if tty {
			width, _, _ = term.GetSize(int(os.Stdout.Fd()))
		}
		result, err = runPlain(ctx, sess, os.Stdout, tty, width)
	}

	c.saveLastRun(ddm, params, result)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	if !interactive {
		fmt.Fprintf(os.Stdout, "\n  %s %s %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(result.Title),
			cliui.DimStyle.Render(fmt.Sprintf("(%d questions, id %s)", len(result.Questions), result.ID)),
		)
	}
	return nil
}

// params builds the generation parameters from the theme argument, or from
// the last run with --again.
func (c *generateCommander) params(ddm *dotdir.Manager, theme string) (generate.Params, error) {
	params := generate.Params{
		Theme:         theme,
		Words:         generate.ParseWords(c.words),
		Difficulty:    c.cfg.Generate.Difficulty,
		QuestionCount: c.cfg.Generate.QuestionCount,
	}

	if c.again {
		last, err := ddm.LoadLastRun(c.configDir)
		if err != nil {
			return generate.Params{}, err
		}
		if last == nil {
			return generate.Params{}, errors.New("nothing to repeat: run generate with a theme first")
		}
		if params.Theme == "" {
			params.Theme = last.Theme
		}
		if len(params.Words) == 0 {
			params.Words = last.Words
		}
		if last.Difficulty != "" {
			params.Difficulty = last.Difficulty
		}
		if last.QuestionCount != 0 {
			params.QuestionCount = last.QuestionCount
		}
	}

	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return generate.Params{}, err
	}
	return params, nil
}

// openLog sets up c.logger. Logs always go to the log file in the dot
// directory; in plain mode they are also shown on stderr.
func (c *generateCommander) openLog(ddm *dotdir.Manager, interactive bool) (*os.File, error) {
	dir, err := ddm.Target(c.configDir)
	if err != nil {
		return nil, err
	}
	f, err := logger.OpenFile(dir)
	if err != nil {
		return nil, err
	}

	fileLogger := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f))
	if interactive {
		c.logger = fileLogger
		return f, nil
	}

	level := logger.WithDebug(c.debug)
	c.logger = logger.Multi(fileLogger, logger.New(level, logger.WithPretty(true), logger.WithWriter(os.Stderr)))
	return f, nil
}

func (c *generateCommander) openTranscript(ddm *dotdir.Manager) (*os.File, error) {
	dir, err := ddm.Subdir(c.configDir, "transcripts")
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%s.txt", time.Now().UTC().Format("20060102T150405Z"), c.cfg.Provider.Name)
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	c.logger.Info("writing transcript", "path", f.Name())
	return f, nil
}

// startPool opens the paper store and event publisher and starts the worker
// pool that persists finalized papers. The returned func drains the pool and
// closes everything.
func (c *generateCommander) startPool(ctx context.Context, saved *chan worker.Result) (*worker.Pool, func(), error) {
	driver, err := storeopen.Open(ctx, c.cfg.Storage, c.configDir, c.logger)
	if err != nil {
		return nil, nil, err
	}

	var publisher eventstream.Publisher = nop.NewPublisher()
	if brokers := kafka.ParseBrokers(c.cfg.EventStream.KafkaBrokers); len(brokers) > 0 {
		publisher, err = kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   c.cfg.EventStream.KafkaTopic,
			Logger:  c.logger,
		})
		if err != nil {
			driver.Close()
			return nil, nil, err
		}
	}

	results := make(chan worker.Result, 4)
	*saved = results

	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Timeout:   30 * time.Second,
		Logger:    c.logger,
		OnDone: func(r worker.Result) {
			select {
			case results <- r:
			default:
			}
		},
	})
	if err != nil {
		publisher.Close()
		driver.Close()
		return nil, nil, err
	}

	return pool, func() {
		pool.Close()
		if err := publisher.Close(); err != nil {
			c.logger.Warn("closing publisher", "error", err)
		}
		driver.Close()
	}, nil
}

func (c *generateCommander) saveLastRun(ddm *dotdir.Manager, params generate.Params, result *paper.Paper) {
	run := &dotdir.LastRun{
		Theme:         params.Theme,
		Words:         params.Words,
		Difficulty:    params.Difficulty,
		QuestionCount: params.QuestionCount,
		At:            time.Now().UTC(),
	}
	if result != nil {
		run.PaperID = result.ID
	}
	if err := ddm.SaveLastRun(run, c.configDir); err != nil {
		c.logger.Warn("could not save last run", "error", err)
	}
}

// runTUI runs the full-screen preview until the user quits.
func runTUI(ctx context.Context, sess *session) (*paper.Paper, error) {
	model := newGenerateModel(ctx, sess)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, err
	}
	m, ok := final.(generateModel)
	if !ok {
		return nil, nil
	}
	if m.pipe.State() == pipeline.Failed {
		return nil, m.pipe.Err()
	}
	return m.result(), nil
}
