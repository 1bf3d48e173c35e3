package paperscmder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/paper"
)

const showLongDesc string = `Show a stored paper.

The paper is rendered as markdown. Answers are hidden unless --answers is
given. Use --json for the stored document.

Examples:
  quizpaper papers show 3f2b1c7e-...
  quizpaper papers show 3f2b1c7e-... --answers
  quizpaper papers show 3f2b1c7e-... --json`

const showShortDesc string = "Show a stored paper"

func newShowCmd() *cobra.Command {
	var (
		flags   storeFlags
		answers bool
		asJSON  bool
		width   int
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer driver.Close()

			p, err := driver.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding paper: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			// On a render error the raw markdown comes back instead.
			rendered, _ := cliui.RenderMarkdown(paperMarkdown(p, answers), width)
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	addStoreFlags(cmd, &flags)
	cmd.Flags().BoolVarP(&answers, "answers", "a", false, "Include the answers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the paper as JSON")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for the rendered paper")

	return cmd
}

// paperMarkdown renders p as a markdown document.
func paperMarkdown(p *paper.Paper, answers bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Description != "" {
		fmt.Fprintf(&b, "_%s_\n\n", p.Description)
	}
	if len(p.Tags) > 0 {
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Join(tags, " "))
	}

	for i, q := range p.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeBlanks(q.Sentence))
		if q.Translation != "" {
			fmt.Fprintf(&b, "   - %s\n", q.Translation)
		}
		if answers {
			fmt.Fprintf(&b, "   - **%s**\n", q.Answer)
		}
	}

	return b.String()
}

// escapeBlanks keeps the underscores of a blank from being read as emphasis.
func escapeBlanks(s string) string {
	return strings.ReplaceAll(s, "_", `\_`)
}
