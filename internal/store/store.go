// Package store is the Postgres implementation of every storage boundary the
// services use. Each operation acquires its own pooled connection under an
// acquisition timeout and releases it on every exit path.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"emocare/backend/internal/apperr"
)

const uniqueViolation = "23505"

type Options struct {
	AcquireTimeout time.Duration
	// Timezone is the IANA zone hour-of-day statistics are read in.
	Timezone string
	DebugSQL bool
	Logger   *zap.Logger
}

type Store struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	timezone       string
	debugSQL       bool
	logger         *zap.Logger
}

func New(pool *pgxpool.Pool, opts Options) *Store {
	s := &Store{
		pool:           pool,
		acquireTimeout: opts.AcquireTimeout,
		timezone:       opts.Timezone,
		debugSQL:       opts.DebugSQL,
		logger:         opts.Logger,
	}
	if s.acquireTimeout <= 0 {
		s.acquireTimeout = 5 * time.Second
	}
	if s.timezone == "" {
		s.timezone = "UTC"
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// withConn runs fn on a dedicated connection. Failures that are not already
// typed come back as Storage errors named after op.
func (s *Store) withConn(ctx context.Context, op string, fn func(conn *pgxpool.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	conn, err := s.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		return apperr.Storage(op, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	started := time.Now()
	err = fn(conn)
	if s.debugSQL {
		s.logger.Debug("executed query",
			zap.String("op", op),
			zap.Int64("duration_ms", time.Since(started).Milliseconds()),
			zap.Bool("ok", err == nil),
		)
	}
	if err != nil {
		return apperr.Storage(op, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
