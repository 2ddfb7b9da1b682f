package main

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the relational schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			return withDB(cmd.Context(), cfg, func(ctx context.Context, db *sqlx.DB) error {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
				log.Info().Msg("migrations applied")
				return nil
			})
		},
	}
}

func createAdminCmd(configPath *string) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			return withDB(cmd.Context(), cfg, func(ctx context.Context, db *sqlx.DB) error {
				svc := authService.NewService(
					postgres.NewAccountRepository(db),
					auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry()),
					security.NewBcryptHasher(cfg.Security.BcryptCost),
				)
				admin, err := svc.CreateAdmin(ctx, name, email, password)
				if err != nil {
					return err
				}
				log.Info().Str("account_id", admin.ID.String()).Str("email", admin.Email).Msg("admin account created")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	return cmd
}

func bootstrap(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}

func withDB(ctx context.Context, cfg *config.Config, fn func(context.Context, *sqlx.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := postgres.NewDB(connectCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}
