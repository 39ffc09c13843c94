package mark

import (
	"github.com/spf13/cobra"
)

// MarkCmd - родительская команда для работы с локальным буфером оценок
var MarkCmd = &cobra.Command{
	Use:   "mark",
	Short: "Управление оценками",
	Long:  `Сохранение оценок в локальный буфер, просмотр и очистка доставленных.`,
}
