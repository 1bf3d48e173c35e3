package paperscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/pkg/cliui"
)

const deleteLongDesc string = `Delete a stored paper.

Examples:
  quizpaper papers delete 3f2b1c7e-...`

const deleteShortDesc string = "Delete a stored paper"

func newDeleteCmd() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: deleteShortDesc,
		Long:  deleteLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer driver.Close()

			if err := driver.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Deleted %s\n\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(args[0]),
			)
			return nil
		},
	}

	addStoreFlags(cmd, &flags)

	return cmd
}
