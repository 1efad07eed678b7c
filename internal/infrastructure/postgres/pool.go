package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Negocio-api/pkg/config"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

const (
	pingInitialInterval = 500 * time.Millisecond
	pingMaxInterval     = 5 * time.Second
)

// NewPool abre el pool con el DSN de la configuración (DATABASE_URL o DB_*) y espera a que la
// base responda: reintenta el ping con backoff exponencial hasta cfg.ConnectAttempts veces.
// NUMERIC se lee y escribe como decimal.Decimal en todas las conexiones.
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}

	host := poolConfig.ConnConfig.Host
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = pingInitialInterval
	policy.MaxInterval = pingMaxInterval
	policy.MaxElapsedTime = 0

	ping := func() error { return pool.Ping(ctx) }
	onRetry := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("host", host).Dur("retry_in", wait).Msg("PostgreSQL no responde; reintentando")
	}
	err = backoff.RetryNotify(ping,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx), onRetry)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB tras %d intentos: %w", attempts, err)
	}
	log.Info().Str("host", host).Int32("max_conns", poolConfig.MaxConns).Msg("pool PostgreSQL listo")
	return pool, nil
}
