// Package sqlite is the default local storage backend: a pure Go SQLite
// database (no CGO) holding the flashcards table.
package sqlite
