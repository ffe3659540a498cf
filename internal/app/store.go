// Package app holds the wiring shared by the server and the one-shot commands.
package app

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/logging"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/repository/memory"
	"alcyxob/fitcoach/internal/repository/mongo"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const indexTimeout = time.Minute

// OpenStore returns the repositories for the configured driver and a function
// releasing them.
func OpenStore(cfg config.DatabaseConfig) (*repository.Store, func(), error) {
	switch cfg.Driver {
	case "memory":
		log.Warnln("using the in-memory store, data is lost on exit")
		return memory.NewStore(), func() {}, nil
	case "mongo", "":
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	db := client.Database(cfg.Name)

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	mongo.EnsureIndexes(ctx, db)
	cancel()

	closeFn := func() {
		log.Println("disconnecting mongodb ...")
		if err := mongo.DisconnectDB(client); err != nil {
			log.Errorf("failed to disconnect mongodb: %s", err)
		}
	}
	return mongo.NewStore(db), closeFn, nil
}

// SetupLogging applies the log section of cfg.
func SetupLogging(cfg config.LogConfig) {
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.File,
		LogToStdout:   cfg.Stdout,
		LogLevel:      cfg.Level,
		LogFormatJSON: cfg.JSON,
	})
}
