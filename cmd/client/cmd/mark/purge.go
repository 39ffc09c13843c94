package mark

import (
	"fmt"

	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
)

var PurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Удалить доставленные оценки",
	Long:  `Удаляет из локального буфера все оценки в статусе synced.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		n, err := app.PurgeSynced(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка очистки буфера: %w", err)
		}

		fmt.Printf("Удалено доставленных оценок: %d\n", n)
		return nil
	},
}
