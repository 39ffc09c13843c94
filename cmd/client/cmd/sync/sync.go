package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
	"gradebook/internal/app/client"
	"gradebook/internal/app/client/offline"
)

var syncStatus bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация оценок",
	Long: `Отправляет на сервер все оценки в статусе pending одним циклом.

Если сервер недоступен или отклонил пачку, оценки возвращаются в pending
и будут отправлены при следующей попытке.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		if syncStatus {
			return showSyncStatus(cmd.Context(), app)
		}
		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	start := time.Now()

	outcome, err := app.SyncNow(ctx)
	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	duration := time.Since(start).Round(time.Millisecond)

	switch outcome {
	case offline.OutcomeDelivered:
		fmt.Printf("%s за %v\n", color.GreenString("✓ Оценки доставлены"), duration)
	case offline.OutcomeEmpty:
		fmt.Println("Нет оценок для отправки")
	case offline.OutcomeRolledBack:
		fmt.Println(color.YellowString("⚠ Сервер не принял пачку, оценки возвращены в очередь"))
	case offline.OutcomeBusy:
		fmt.Println("Синхронизация уже выполняется")
	case offline.OutcomeNoSink:
		fmt.Println("Приемник синхронизации не настроен")
	}

	return showCounts(ctx, app)
}

func showSyncStatus(ctx context.Context, app *client.App) error {
	status, err := app.Status(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}

	fmt.Print("Сервер: ")
	if status.Online {
		fmt.Println(color.GreenString("доступен"))
	} else {
		fmt.Println(color.RedString("недоступен"))
	}
	fmt.Printf("Синхронизация выполняется: %v\n", status.Syncing)
	printCounts(status.Counts)
	return nil
}

func showCounts(ctx context.Context, app *client.App) error {
	counts, err := app.Counts(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}
	printCounts(counts)
	return nil
}

func printCounts(counts map[offline.Status]int) {
	fmt.Println("Оценки в буфере:")
	for _, s := range offline.Statuses {
		fmt.Printf("  %-9s %d\n", s, counts[s])
	}
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать состояние очереди и доступность сервера")
}
