package logger_test

import (
	"errors"

	"github.com/wonny/tradejournal/backend/pkg/config"
	"github.com/wonny/tradejournal/backend/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	log := logger.New(&config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	})

	log.WithComponent("journal").
		WithFields(map[string]interface{}{
			"user_id": "u-1",
			"trades":  128,
		}).
		Info("dashboard computed")

	err := errors.New("connection refused")
	log.WithError(err).Error("failed to load trades")
}
