// Package testdb opens migrated databases for tests: a throwaway SQLite file
// for unit tests and, when a URL is configured, a PostgreSQL database for
// integration tests.
package testdb
