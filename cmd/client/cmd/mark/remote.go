package mark

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
	"gradebook/internal/domain/mark"
)

var (
	remoteAssessment string
	remoteStudent    string
	remoteFormat     string
)

var RemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Оценки, сохраненные на сервере",
	Long: `Читает с сервера уже доставленные оценки по контрольной или по ученику.
Для ученика дополнительно выводится итог: сумма, средний балл и оценка.`,
	Example: `  gradebook mark remote --assessment asm-1
  gradebook mark remote --student s-17 --format json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		resp, err := app.RemoteMarks(ctx, remoteAssessment, remoteStudent)
		if err != nil {
			return fmt.Errorf("ошибка получения оценок с сервера: %w", err)
		}

		switch remoteFormat {
		case "json":
			return printJSON(os.Stdout, resp)
		case "table":
			return printRemoteTable(os.Stdout, resp)
		default:
			return fmt.Errorf("неизвестный формат %q", remoteFormat)
		}
	},
}

func printRemoteTable(out io.Writer, resp mark.ListResponse) error {
	if len(resp.Marks) == 0 {
		fmt.Fprintln(out, "Оценки не найдены")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Контрольная\tУченик\tБаллы\tОценка\tОтзыв\t\n")
	for _, m := range resp.Marks {
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\t\n",
			m.AssessmentID,
			m.StudentID,
			m.MarksObtained,
			m.Grade,
			m.Remark,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if s := resp.Summary; s != nil {
		fmt.Fprintf(out, "\nИтого: %g, средний балл: %g, оценка: %s (%s)\n", s.Total, s.Average, s.Grade, s.Remark)
		fmt.Fprintln(out, s.Comment)
	}
	return nil
}

func init() {
	RemoteCmd.Flags().StringVarP(&remoteAssessment, "assessment", "a", "", "идентификатор контрольной")
	RemoteCmd.Flags().StringVarP(&remoteStudent, "student", "s", "", "идентификатор ученика")
	RemoteCmd.Flags().StringVarP(&remoteFormat, "format", "f", "table", "формат вывода (table, json)")
	RemoteCmd.MarkFlagsOneRequired("assessment", "student")
	RemoteCmd.MarkFlagsMutuallyExclusive("assessment", "student")
}
