// Package domain contains the core entities of flashgen: flashcards, the
// requests that produce them, and the outcome of a generation run. It has no
// dependencies on storage, transport or the text-completion backend.
package domain
