// Package store defines the persistence contract for flashcards.
// The interfaces keep the service layer independent of the concrete
// database; implementations live under internal/platform.
package store
