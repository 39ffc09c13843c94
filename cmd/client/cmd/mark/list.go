package mark

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
	"gradebook/internal/app/client"
	"gradebook/internal/app/client/offline"
)

var (
	listStatus     string
	listAssessment string
	listFormat     string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список оценок в буфере",
	Long: `Просмотр оценок из локального буфера с фильтрацией по статусу
и по контрольной.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		status := offline.Status(listStatus)
		if status != "" && !status.Valid() {
			return fmt.Errorf("неизвестный статус %q, допустимые: %v", listStatus, offline.Statuses)
		}

		marks, err := app.ListMarks(cmd.Context(), client.MarkFilter{
			Status:       status,
			AssessmentID: listAssessment,
		})
		if err != nil {
			return fmt.Errorf("ошибка получения списка оценок: %w", err)
		}

		switch listFormat {
		case "json":
			return printJSON(os.Stdout, marks)
		case "table":
			return printMarksTable(os.Stdout, marks)
		default:
			return fmt.Errorf("неизвестный формат %q", listFormat)
		}
	},
}

func printMarksTable(out io.Writer, marks []client.LocalMark) error {
	if len(marks) == 0 {
		fmt.Fprintln(out, "Оценки не найдены")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tКонтрольная\tУченик\tБаллы\tОценка\tСтатус\tОбновлено\t\n")

	for _, m := range marks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%s\t%s\t\n",
			m.ID,
			m.Mark.AssessmentID,
			m.Mark.StudentID,
			m.Mark.MarksObtained,
			m.Grade,
			colorStatus(m.Status),
			m.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nВсего оценок: %d\n", len(marks))
	return nil
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func colorStatus(s offline.Status) string {
	switch s {
	case offline.StatusSynced:
		return color.GreenString(string(s))
	case offline.StatusSyncing:
		return color.CyanString(string(s))
	case offline.StatusConflict:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func init() {
	ListCmd.Flags().StringVar(&listStatus, "status", "", "фильтр по статусу (pending, syncing, synced, conflict)")
	ListCmd.Flags().StringVarP(&listAssessment, "assessment", "a", "", "фильтр по контрольной")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (table, json)")
}
