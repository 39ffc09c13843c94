package types

import (
	"context"
	"errors"

	"gradebook/internal/app/client"
)

type contextKey string

// ClientAppKey ключ, под которым приложение кладется в контекст команды
const ClientAppKey contextKey = "app"

// App достает приложение из контекста команды
func App(ctx context.Context) (*client.App, error) {
	app, ok := ctx.Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	return app, nil
}
