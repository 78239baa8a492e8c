package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/readings/application/commands"
	"github.com/Gzeu/tarot-reading-app/internal/readings/application/queries"
)

// ReadingsHandler handles reading API requests.
type ReadingsHandler struct {
	generate      *commands.GenerateReadingHandler
	setFavorite   *commands.SetFavoriteHandler
	attachJournal *commands.AttachJournalHandler
	getReading    *queries.GetReadingHandler
	listReadings  *queries.ListReadingsHandler
	logger        *slog.Logger
}

// NewReadingsHandler creates a new readings handler.
func NewReadingsHandler(
	generate *commands.GenerateReadingHandler,
	setFavorite *commands.SetFavoriteHandler,
	attachJournal *commands.AttachJournalHandler,
	getReading *queries.GetReadingHandler,
	listReadings *queries.ListReadingsHandler,
	logger *slog.Logger,
) *ReadingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadingsHandler{
		generate:      generate,
		setFavorite:   setFavorite,
		attachJournal: attachJournal,
		getReading:    getReading,
		listReadings:  listReadings,
		logger:        logger,
	}
}

type generateReadingRequest struct {
	SpreadID string `json:"spreadId"`
	Question string `json:"question"`
}

type drawnCardResponse struct {
	CardID   int    `json:"cardId"`
	Position string `json:"position"`
	Reversed bool   `json:"reversed"`
}

type generateReadingResponse struct {
	ReadingID string              `json:"readingId"`
	SpreadID  string              `json:"spreadId"`
	Cards     []drawnCardResponse `json:"cards"`
	CreatedAt string              `json:"createdAt"`
	Streak    int                 `json:"streak"`
	Existing  bool                `json:"existing,omitempty"`
}

// Generate handles POST /api/v1/readings
func (h *ReadingsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req generateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid JSON body")
		return
	}
	if req.SpreadID == "" {
		writeError(w, http.StatusBadRequest, "validation", "spreadId is required")
		return
	}

	result, err := h.generate.Handle(r.Context(), commands.GenerateReadingCommand{
		UserID:   userID,
		SpreadID: req.SpreadID,
		Question: req.Question,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	cards := make([]drawnCardResponse, len(result.CardIDs))
	for i, id := range result.CardIDs {
		cards[i] = drawnCardResponse{CardID: id, Reversed: result.Reversed[i]}
		if i < len(result.Positions) {
			cards[i].Position = result.Positions[i]
		}
	}

	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}
	writeJSON(w, status, generateReadingResponse{
		ReadingID: result.ReadingID.String(),
		SpreadID:  result.SpreadID,
		Cards:     cards,
		CreatedAt: result.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Streak:    result.Streak,
		Existing:  result.Existing,
	})
}

// List handles GET /api/v1/readings
func (h *ReadingsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	views, err := h.listReadings.Handle(r.Context(), queries.ListReadingsQuery{
		UserID: userID,
		Limit:  parseIntParam(r, "limit", 0),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"readings": views})
}

// Get handles GET /api/v1/readings/{readingID}
func (h *ReadingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	readingID, err := uuid.Parse(r.PathValue("readingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid reading ID")
		return
	}

	view, err := h.getReading.Handle(r.Context(), queries.GetReadingQuery{
		ReadingID: readingID,
		UserID:    userID,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type setFavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite handles PUT /api/v1/readings/{readingID}/favorite
func (h *ReadingsHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	readingID, err := uuid.Parse(r.PathValue("readingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid reading ID")
		return
	}

	var req setFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid JSON body")
		return
	}

	err = h.setFavorite.Handle(r.Context(), commands.SetFavoriteCommand{
		ReadingID: readingID,
		UserID:    userID,
		Favorite:  req.Favorite,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorite": req.Favorite})
}

type attachJournalRequest struct {
	Notes      string `json:"notes"`
	Reflection string `json:"reflection"`
}

// AttachJournal handles POST /api/v1/readings/{readingID}/journal
func (h *ReadingsHandler) AttachJournal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	readingID, err := uuid.Parse(r.PathValue("readingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid reading ID")
		return
	}

	var req attachJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid JSON body")
		return
	}

	result, err := h.attachJournal.Handle(r.Context(), commands.AttachJournalCommand{
		ReadingID:  readingID,
		UserID:     userID,
		Notes:      req.Notes,
		Reflection: req.Reflection,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"journalId": result.JournalID.String()})
}

// parseIntParam parses a query parameter as int with a default.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
