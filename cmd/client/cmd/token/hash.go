package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"gradebook/internal/app/server/api/http/middleware/auth"
)

var HashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Вывести bcrypt-хеш токена для API_TOKEN_HASH сервера",
	// конфигурация клиента и локальное хранилище не нужны
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(_ *cobra.Command, _ []string) error {
		token, err := readSecret("Токен: ")
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("пустой токен")
		}

		hash, err := auth.HashToken(token)
		if err != nil {
			return fmt.Errorf("ошибка хеширования: %w", err)
		}

		fmt.Println(hash)
		return nil
	},
}
