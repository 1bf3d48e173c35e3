// Package paperscmder provides the papers command for browsing and managing
// stored quiz papers.
package paperscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/cmd/quizpaper/storeopen"
	"github.com/papercomputeco/quizpaper/pkg/config"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

const papersLongDesc string = `Browse and manage stored quiz papers.

Papers are stored by "quizpaper generate" in the configured paper store
(storage.driver, SQLite by default).

Examples:
  quizpaper papers list
  quizpaper papers show 3f2b1c7e-...
  quizpaper papers show 3f2b1c7e-... --answers
  quizpaper papers delete 3f2b1c7e-...`

const papersShortDesc string = "Browse and manage stored papers"

func NewPapersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papers",
		Short: papersShortDesc,
		Long:  papersLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

// storeFlags holds the storage flag targets of a subcommand.
type storeFlags struct {
	driver      string
	sqlitePath  string
	postgresDSN string
}

func addStoreFlags(cmd *cobra.Command, f *storeFlags) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &f.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &f.postgresDSN)
}

// openStore resolves the storage settings with the usual precedence and
// opens the store.
func openStore(cmd *cobra.Command) (storage.Driver, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, config.StorageFlags)

	return storeopen.Open(cmd.Context(), config.FromViper(v).Storage, configDir, nil)
}
