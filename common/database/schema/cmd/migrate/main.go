package main

import (
	"context"
	"log"
	"os"
	"time"

	"jobbots/common/database"
	"jobbots/common/database/schema"
	"jobbots/common/database/schema/migrations"
	"jobbots/common/logging"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func main() {
	dsn := pflag.String("dsn", envOr("CLICKHOUSE_DSN", "127.0.0.1:9000"), "clickhouse address or clickhouse:// DSN")
	dbName := pflag.String("database", envOr("CLICKHOUSE_DATABASE", "jobbots"), "database name")
	user := pflag.String("user", envOr("CLICKHOUSE_USERNAME", "default"), "username")
	rollback := pflag.Int("rollback", 0, "roll back the migration with this version and exit")
	pflag.Parse()

	logger, err := logging.New(logging.Options{Development: true, Service: "migrate"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		DSN:      *dsn,
		Username: *user,
		Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		Database: *dbName,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if *rollback > 0 {
		for _, migration := range migrations.All {
			if migration.Version != *rollback {
				continue
			}
			if err := migrator.RollbackMigration(ctx, migration); err != nil {
				logger.Fatal("Failed to roll back migration", zap.Int("version", migration.Version), zap.Error(err))
			}
			logger.Info("Rolled back migration", zap.Int("version", migration.Version))
			return
		}
		logger.Fatal("Unknown migration version", zap.Int("version", *rollback))
	}

	if _, err := migrator.Migrate(ctx, migrations.All); err != nil {
		logger.Fatal("Failed to migrate", zap.Error(err))
	}

	logger.Info("All migrations completed successfully")
}
