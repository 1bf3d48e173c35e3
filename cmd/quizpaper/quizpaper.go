// Package quizpapercmder
package quizpapercmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/quizpaper/cmd/quizpaper/config"
	generatecmder "github.com/papercomputeco/quizpaper/cmd/quizpaper/generate"
	initcmder "github.com/papercomputeco/quizpaper/cmd/quizpaper/init"
	paperscmder "github.com/papercomputeco/quizpaper/cmd/quizpaper/papers"
	servecmder "github.com/papercomputeco/quizpaper/cmd/quizpaper/serve"
	versioncmder "github.com/papercomputeco/quizpaper/cmd/version"
)

const quizpaperLongDesc string = `Quizpaper generates vocabulary quiz papers with a language model and
previews them as they stream in.

Get started:
  quizpaper init --preset openai       Write a provider preset
  quizpaper generate travel            Generate a paper about travel
  quizpaper papers list                Browse stored papers
  quizpaper serve                      Share stored papers over HTTP`

const quizpaperShortDesc string = "Quizpaper - vocabulary quiz papers"

func NewQuizpaperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quizpaper",
		Short:         quizpaperShortDesc,
		Long:          quizpaperLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags. -d belongs to generate --difficulty.
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .quizpaper/ directory")

	cmd.AddCommand(generatecmder.NewGenerateCmd())
	cmd.AddCommand(paperscmder.NewPapersCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
