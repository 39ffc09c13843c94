package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/mark"
	"gradebook/cmd/client/cmd/sync"
	"gradebook/cmd/client/cmd/token"
	"gradebook/cmd/client/cmd/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Проверить настройку клиента",
	Long: `Создает локальный буфер оценок и проверяет соединение с сервером.

Без сервера клиент тоже работает: оценки копятся локально
и уходят при первой успешной синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		counts, err := app.Counts(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка инициализации хранилища: %w", err)
		}
		fmt.Printf("%s (оценок в буфере: %d)\n", color.GreenString("✓ Локальный буфер готов"), total(counts))

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := app.CheckConnection(ctx); err != nil {
			fmt.Printf("%s не удалось подключиться к серверу: %v\n", color.YellowString("⚠"), err)
			fmt.Println("Оценки будут сохраняться локально до восстановления связи.")
			return nil
		}
		fmt.Println(color.GreenString("✓ Соединение с сервером установлено"))

		if _, err := app.GetToken(); err != nil {
			fmt.Println("Токен доступа не сохранен: gradebook token set")
		}
		return nil
	},
}

func total[K comparable](m map[K]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(daemonCmd)

	rootCmd.AddCommand(mark.MarkCmd)
	mark.MarkCmd.AddCommand(mark.SaveCmd)
	mark.MarkCmd.AddCommand(mark.ListCmd)
	mark.MarkCmd.AddCommand(mark.PurgeCmd)
	mark.MarkCmd.AddCommand(mark.RemoteCmd)

	rootCmd.AddCommand(sync.SyncCmd)

	rootCmd.AddCommand(token.TokenCmd)
	token.TokenCmd.AddCommand(token.SetCmd)
	token.TokenCmd.AddCommand(token.HashCmd)
	token.TokenCmd.AddCommand(token.ClearCmd)
}
