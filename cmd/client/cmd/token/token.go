package token

import (
	"github.com/spf13/cobra"
)

// TokenCmd - родительская команда для управления токеном доступа
var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Управление токеном доступа к серверу",
}
