package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var schemaSQL string

// Execer is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Execer interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, q Execer) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type requiredColumn struct {
	table  string
	column string
}

var requiredColumns = []requiredColumn{
	{table: "User", column: "passwordHash"},
	{table: "ChatSession", column: "endDate"},
	{table: "Message", column: "emotionType"},
	{table: "UserProfile", column: "data"},
	{table: "UserProfile", column: "updatedAt"},
	{table: "UserHistory", column: "summary"},
}

// ValidateRuntimeSchema fails fast at startup when a column the store reads is missing.
func ValidateRuntimeSchema(ctx context.Context, q Execer) error {
	if q == nil {
		return fmt.Errorf("database pool is nil")
	}
	for _, item := range requiredColumns {
		ok, err := columnExists(ctx, q, item.table, item.column)
		if err != nil {
			return fmt.Errorf("failed checking schema for %s.%s: %w", item.table, item.column, err)
		}
		if !ok {
			return fmt.Errorf("required column %s.%s is missing; run emocarectl migrate", item.table, item.column)
		}
	}
	return nil
}

func columnExists(ctx context.Context, q Execer, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := q.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND table_name = $1
		     AND column_name = $2
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
