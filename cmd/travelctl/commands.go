package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"travel/internal/app"
	"travel/internal/config"
	"travel/internal/domain"
	"travel/internal/logger"
	"travel/internal/repository/postgres"
)

// env holds what every subcommand needs.
type env struct {
	cfg *config.Config
	db  *sql.DB
	log *zap.Logger
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	// AutoMigrate would make "migrate" run twice.
	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false

	db, err := app.NewDatabase(ctx, dbCfg, nil)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, db: db, log: log}, nil
}

func (e *env) close() {
	e.db.Close()
	_ = e.log.Sync()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if err := postgres.Migrate(ctx, e.db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Inspect and reconcile payments",
	}

	cmd.AddCommand(paymentsShowCmd(), paymentsVerifyCmd())
	return cmd
}

func paymentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <payment-reference>",
		Short: "Print a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			payment, err := postgres.NewPaymentRepository(e.db).GetByReference(ctx, args[0])
			if err != nil {
				return fmt.Errorf("payment %s: %w", args[0], err)
			}

			return printPayment(cmd, payment)
		},
	}
}

func paymentsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <payment-reference>",
		Short: "Reconcile a payment with the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			// Gateway retries can take up to Timeout per attempt.
			timeout := e.cfg.Chapa.Timeout*time.Duration(max(e.cfg.Chapa.MaxAttempts, 1)) + 10*time.Second
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			payment, err := app.NewPaymentService(e.db, nil, e.cfg, e.log).Verify(ctx, args[0])
			if err != nil {
				return fmt.Errorf("verify %s: %w", args[0], err)
			}

			return printPayment(cmd, payment)
		},
	}
}

func printPayment(cmd *cobra.Command, p *domain.Payment) error {
	out := map[string]any{
		"payment_reference":     p.PaymentReference,
		"booking_id":            p.BookingID,
		"transaction_id":        p.TransactionID,
		"amount":                p.Amount.StringFixed(2),
		"currency":              p.Currency,
		"status":                p.Status,
		"webhook_verified":      p.WebhookVerified,
		"verification_attempts": p.VerificationAttempts,
		"failure_reason":        p.FailureReason,
		"paid_at":               p.PaidAt,
		"created_at":            p.CreatedAt,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
