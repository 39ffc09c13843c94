package mark

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
	"gradebook/internal/domain/mark"
)

var (
	assessmentID string
	studentID    string
	marks        float64
	comment      string
)

var SaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Сохранить оценку",
	Long: `Сохраняет оценку в локальный буфер со статусом pending.

Сеть не нужна: оценка уйдет на сервер при следующей синхронизации.`,
	Example: `  gradebook mark save --assessment asm-1 --student s-17 --marks 72
  gradebook mark save -a asm-1 -s s-18 -m 48.5 --comment "сдал позже"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		saved, err := app.SaveMark(cmd.Context(), mark.Entry{
			AssessmentID:   assessmentID,
			StudentID:      studentID,
			MarksObtained:  marks,
			TeacherComment: comment,
		})
		if err != nil {
			return fmt.Errorf("ошибка сохранения оценки: %w", err)
		}

		fmt.Printf("%s %s: %g (%s)\n", color.GreenString("✓ Сохранено"), saved.ID, saved.Mark.MarksObtained, saved.Grade)
		return nil
	},
}

func init() {
	SaveCmd.Flags().StringVarP(&assessmentID, "assessment", "a", "", "идентификатор контрольной")
	SaveCmd.Flags().StringVarP(&studentID, "student", "s", "", "идентификатор ученика")
	SaveCmd.Flags().Float64VarP(&marks, "marks", "m", 0, "количество баллов (0-100)")
	SaveCmd.Flags().StringVar(&comment, "comment", "", "комментарий учителя")

	_ = SaveCmd.MarkFlagRequired("assessment")
	_ = SaveCmd.MarkFlagRequired("student")
	_ = SaveCmd.MarkFlagRequired("marks")
}
