package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/file"
	"trivia-quiz-service/internal/infra/postgres"
	"trivia-quiz-service/internal/logger"
)

// NewSeedCmd replaces the Postgres catalog with a YAML question bank.
func NewSeedCmd(configPath *string) *cobra.Command {
	var bankPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML question bank into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Env)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if bankPath == "" {
				bankPath = cfg.Catalog.SeedFile
			}
			catalog, err := file.LoadBank(bankPath)
			if err != nil {
				return err
			}

			if err := runMigrations(ctx, cfg, log); err != nil {
				return err
			}
			pool, err := postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.NewCatalogStore(pool).ImportCatalog(ctx, catalog); err != nil {
				return err
			}
			log.Info("catalog seeded",
				zap.String("file", bankPath),
				zap.Int("questions", len(catalog.Questions)),
				zap.Int("categories", len(catalog.Categories)))
			return nil
		},
	}
	cmd.Flags().StringVar(&bankPath, "file", "", "question bank to load (defaults to catalog.seed_file)")
	return cmd
}
