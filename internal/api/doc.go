// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts HTTP to the flashcard service and the
// background job runner.
package api
