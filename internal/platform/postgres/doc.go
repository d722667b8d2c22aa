// Package postgres implements the store interfaces on PostgreSQL through the
// pgx stdlib driver. Tags are kept as JSONB and timestamps as TIMESTAMPTZ.
package postgres
