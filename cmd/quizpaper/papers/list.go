package paperscmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/utils"
)

const listLongDesc string = `List stored papers, newest first.

Examples:
  quizpaper papers list
  quizpaper papers list --limit 5`

const listShortDesc string = "List stored papers"

const titleWidth = 48

func newListCmd() *cobra.Command {
	var (
		flags storeFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer driver.Close()

			papers, err := driver.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing papers: %w", err)
			}
			if limit > 0 && len(papers) > limit {
				papers = papers[:limit]
			}

			printList(cmd.OutOrStdout(), papers)
			return nil
		},
	}

	addStoreFlags(cmd, &flags)
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many papers (0 shows all)")

	return cmd
}

func printList(w io.Writer, papers []*paper.Paper) {
	if len(papers) == 0 {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No papers yet. Create one with: quizpaper generate <theme>"))
		return
	}

	fmt.Fprintln(w)
	for _, p := range papers {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cliui.KeyStyle.Render(p.ID),
			cliui.NameStyle.Render(utils.Truncate(p.Title, titleWidth)),
			cliui.DimStyle.Render(fmt.Sprintf("%d questions · %s", len(p.Questions), p.CreatedAt.Local().Format("2006-01-02 15:04"))),
		)
	}
	fmt.Fprintln(w)
}
