package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"gradebook/cmd/client/cmd/types"
)

var ClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Удалить сохраненный токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		if err := app.ClearToken(); err != nil {
			return err
		}

		fmt.Println("Токен удален")
		return nil
	},
}
