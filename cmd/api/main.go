package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

func main() {
	// best-effort: without a .env file the real environment and defaults apply
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "vidtube",
		Short:         "Video sharing API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "vidtube: %v\n", err)
		os.Exit(1)
	}
}

// runtime holds what every subcommand needs: a logger and an open database.
type runtime struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	db     *sqlx.DB
}

func bootstrap(ctx context.Context) (*runtime, error) {
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	sugar := lg.Sugar()

	db, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		_ = lg.Sync()
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return &runtime{logger: lg, sugar: sugar, db: db}, nil
}

func (rt *runtime) close() {
	if err := rt.db.Close(); err != nil {
		rt.sugar.Warnf("db close failed: %v", err)
	}
	_ = rt.logger.Sync()
}
