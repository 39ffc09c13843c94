package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Фоновая синхронизация",
	Long: `Следит за доступностью сервера и отправляет накопленные оценки
каждые SYNC_INTERVAL_SECONDS секунд, а также сразу после восстановления связи.

Работает до получения SIGINT или SIGTERM.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		if err := app.Run(cmd.Context()); err != nil {
			return fmt.Errorf("ошибка фоновой синхронизации: %w", err)
		}
		return nil
	},
}
