package token

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gradebook/cmd/client/cmd/types"
)

var SetCmd = &cobra.Command{
	Use:   "set",
	Short: "Сохранить токен доступа",
	Long: `Запрашивает токен и сохраняет его в каталоге конфигурации.
Переменная окружения API_TOKEN имеет приоритет над сохраненным токеном.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		token, err := readSecret("Токен: ")
		if err != nil {
			return err
		}

		if err := app.SaveToken(token); err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓ Токен сохранен"))
		return nil
	},
}

// readSecret читает строку без эха, если stdin терминал, иначе первую строку ввода
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("ошибка чтения токена: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Print(prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}
