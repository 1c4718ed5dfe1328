// Package handler implements the parse, taxonomy and expense-listing JSON
// HTTP endpoints.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/smartspend/backend/internal/domain/expense"
)

const maxParseBytes = 4096

// ExpenseHandler serves the parser, taxonomy and recorded-expense endpoints.
type ExpenseHandler struct {
	parser    *expense.Parser
	taxonomy  *expense.Taxonomy
	suggester *expense.Suggester
	search    *expense.SearchIndex
	recorder  expense.Recorder
	logger    *slog.Logger
}

// NewExpenseHandler constructs a new handler.
func NewExpenseHandler(
	parser *expense.Parser,
	taxonomy *expense.Taxonomy,
	suggester *expense.Suggester,
	search *expense.SearchIndex,
	recorder expense.Recorder,
	logger *slog.Logger,
) *ExpenseHandler {
	return &ExpenseHandler{
		parser:    parser,
		taxonomy:  taxonomy,
		suggester: suggester,
		search:    search,
		recorder:  recorder,
		logger:    logger,
	}
}

// RegisterRoutes mounts the endpoints on the mux.
func (h *ExpenseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/parse", h.handleParse)
	mux.HandleFunc("GET /api/v1/categories", h.handleCategories)
	mux.HandleFunc("GET /api/v1/categories/search", h.handleCategorySearch)
	mux.HandleFunc("GET /api/v1/categories/suggest", h.handleCategorySuggest)
	mux.HandleFunc("GET /api/v1/expenses", h.handleListExpenses)
}

type parseRequest struct {
	Message string `json:"message"`
}

type parseResponse struct {
	Parsed     expense.ParsedExpense `json:"parsed"`
	Actionable bool                  `json:"actionable"`
}

func (h *ExpenseHandler) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	body := http.MaxBytesReader(w, r.Body, maxParseBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	parsed := h.parser.Parse(message)
	respondJSON(w, http.StatusOK, parseResponse{
		Parsed: parsed,
		Actionable: parsed.Confidence >= expense.ActionableConfidence &&
			parsed.Amount != nil && parsed.Category != nil,
	})
}

func (h *ExpenseHandler) handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"categories": h.taxonomy.Entries(),
	})
}

func (h *ExpenseHandler) handleCategorySearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	matches, err := h.search.Search(query, queryLimit(r))
	if err != nil {
		h.logger.Error("category search failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (h *ExpenseHandler) handleCategorySuggest(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": h.suggester.Suggest(query, queryLimit(r)),
	})
}

func (h *ExpenseHandler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	expenses, err := h.recorder.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list expenses",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 5
	}
	return limit
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
