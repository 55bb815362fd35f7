package application

import (
	"context"
	"testing"
	"time"

	"github.com/fixora/fixora-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewAPI_ShutsDownTracingWhenStartupFails(t *testing.T) {
	shutdowns := 0
	prev := initTracing
	initTracing = func(context.Context, string, string, string) (func(context.Context) error, error) {
		return func(context.Context) error {
			shutdowns++
			return nil
		}, nil
	}
	t.Cleanup(func() { initTracing = prev })

	cfg := &config.Config{AppEnv: "development", FeedbackTTL: time.Hour}
	cfg.DB.Host = "127.0.0.1"
	cfg.DB.Port = "1"
	cfg.DB.User = "fixora"
	cfg.DB.Password = "secret"
	cfg.DB.Database = "fixora"
	cfg.DB.SSLMode = "disable"
	cfg.Notify.Workers = 1
	cfg.Notify.QueueSize = 1

	api, err := NewAPI(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, api)
	assert.Contains(t, err.Error(), "migrate")
	assert.Equal(t, 1, shutdowns)
}
