package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/extract"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/service"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// updatableFields are the JSON keys accepted by PUT /api/flashcards/{id}.
var updatableFields = []string{
	"question", "answer", "explanation", "tags", "difficulty",
	"bookmarked", "lastReviewed", "reviewCount", "mastery",
}

// FlashcardHandler handles flashcard HTTP requests.
type FlashcardHandler struct {
	flashcardService service.FlashcardService
	logger           *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(flashcardService service.FlashcardService, logger *slog.Logger) *FlashcardHandler {
	if flashcardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("flashcardService cannot be nil for FlashcardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}

	return &FlashcardHandler{
		flashcardService: flashcardService,
		logger:           logger.With(slog.String("component", "flashcard_handler")),
	}
}

// Generate handles POST /api/generate.
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	h.generate(w, r, req.toDomain(), log)
}

// Upload handles POST /api/generate/upload. The multipart form carries the document
// in "file" plus optional "subjects" (comma separated), "count" and "mode".
func (h *FlashcardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxDocumentSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleServiceError(w, r, extract.ErrDocumentTooLarge, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "A file is required", err)
		return
	}
	defer func() { _ = file.Close() }()

	count := 0
	if raw := strings.TrimSpace(r.FormValue("count")); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid count: must be a number", err)
			return
		}
	}

	text, err := extract.Text(header.Filename, file)
	if err != nil {
		handleServiceError(w, r, err, "Failed to read the uploaded document")
		return
	}

	log.Debug("extracted text from upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Int("text_length", len(text)))

	h.generate(w, r, domain.GenerationRequest{
		Text:     text,
		Subjects: splitSubjects(r.FormValue("subjects")),
		Count:    count,
		Mode:     domain.GenerationMode(strings.TrimSpace(r.FormValue("mode"))),
	}, log)
}

func (h *FlashcardHandler) generate(w http.ResponseWriter, r *http.Request, req domain.GenerationRequest, log *slog.Logger) {
	outcome, err := h.flashcardService.GenerateAndSave(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err, "Failed to generate flashcards")
		return
	}

	log.Info("flashcards generated",
		slog.Int("requested", outcome.Requested),
		slog.Int("succeeded", outcome.Succeeded),
		slog.Int("failed", outcome.Failed))
	shared.RespondWithJSON(w, r, http.StatusOK, outcomeResponse(outcome))
}

// List handles GET /api/flashcards.
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.flashcardService.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch flashcards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// Update handles PUT /api/flashcards/{id}. Keys outside updatableFields are
// ignored; a body with none of them is rejected.
func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid flashcard ID", err)
		return
	}

	var fields map[string]json.RawMessage
	if err := shared.DecodeJSON(w, r, &fields); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	for key := range fields {
		if !slices.Contains(updatableFields, key) {
			log.Debug("ignoring non-updatable field", slog.String("field", key))
			delete(fields, key)
		}
	}
	if len(fields) == 0 {
		handleServiceError(w, r, service.ErrNoUpdatableFields, "")
		return
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to update flashcard", err)
		return
	}
	var patch domain.FlashcardPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid field value", err)
		return
	}
	// An explicit null is the only way to reset the review timestamp.
	if v, ok := fields["lastReviewed"]; ok && string(bytes.TrimSpace(v)) == "null" {
		patch.ClearLastReviewed = true
	}

	card, err := h.flashcardService.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, r, err, "Failed to update flashcard")
		return
	}

	log.Debug("flashcard updated", slog.Int64("card_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, UpdateResponse{
		Message:   "Flashcard updated successfully",
		Flashcard: card,
	})
}

// Delete handles DELETE /api/flashcards.
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req DeleteRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	deleted, err := h.flashcardService.Delete(r.Context(), req.IDs)
	if err != nil {
		handleServiceError(w, r, err, "Failed to delete flashcards")
		return
	}

	log.Info("flashcards deleted", slog.Int64("deleted", deleted))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{
		Message: fmt.Sprintf("Deleted %d flashcards", deleted),
		Deleted: deleted,
	})
}

func splitSubjects(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
