package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/holdings"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/service"
)

type Handler struct {
	service *service.PortfolioService
	logger  logger.Logger
}

func New(service *service.PortfolioService, logger logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/portfolio", h.getPortfolio)
	mux.HandleFunc("POST /api/portfolio", h.addHolding)
	mux.HandleFunc("GET /api/portfolio/{id}", h.getHolding)
	mux.HandleFunc("PUT /api/portfolio/{id}", h.updateHolding)
	mux.HandleFunc("DELETE /api/portfolio/{id}", h.removeHolding)
	mux.HandleFunc("GET /api/quotes", h.getQuotes)
	mux.HandleFunc("GET /api/metrics", h.getMetrics)

	return mux
}

func (h *Handler) getPortfolio(w http.ResponseWriter, r *http.Request) {
	groupBySector := r.URL.Query().Get("groupBySector") == "true"

	portfolio, err := h.service.GetPortfolio(r.Context(), groupBySector)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Error fetching portfolio data")
		h.logger.Errorf("%s: can't get portfolio", err)
		return
	}

	if groupBySector {
		h.writeJSON(w, http.StatusOK, portfolio.BySector)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.Holdings)
}

func (h *Handler) getHolding(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := h.service.GetHoldingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, holdings.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Stock not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Error fetching stock details")
		h.logger.Errorf("%s: can't get holding %s", err, id)
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) addHolding(w http.ResponseWriter, r *http.Request) {
	var holding model.Holding
	if !h.readJSON(w, r, &holding) {
		return
	}

	added, err := h.service.AddHolding(r.Context(), holding)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, added)
}

func (h *Handler) updateHolding(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var holding model.Holding
	if !h.readJSON(w, r, &holding) {
		return
	}

	updated, err := h.service.UpdateHolding(r.Context(), id, holding)
	if err != nil {
		if errors.Is(err, holdings.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Stock not found")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) removeHolding(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.service.RemoveHolding(r.Context(), id); err != nil {
		if errors.Is(err, holdings.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Stock not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Error deleting stock")
		h.logger.Errorf("%s: can't remove holding %s", err, id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbols(r.URL.Query().Get("symbols"))

	quotes, err := h.service.GetQuotes(r.Context(), symbols)
	if err != nil {
		if errors.Is(err, service.ErrEmptySymbols) {
			h.writeError(w, http.StatusBadRequest, "Symbols query parameter is required")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Error fetching quotes")
		h.logger.Errorf("%s: can't get quotes", err)
		return
	}

	h.writeJSON(w, http.StatusOK, quotes)
}

func (h *Handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbols(r.URL.Query().Get("symbols"))

	metrics, err := h.service.GetMetrics(r.Context(), symbols)
	if err != nil {
		if errors.Is(err, service.ErrEmptySymbols) {
			h.writeError(w, http.StatusBadRequest, "Symbols query parameter is required")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Error fetching metrics")
		h.logger.Errorf("%s: can't get metrics", err)
		return
	}

	h.writeJSON(w, http.StatusOK, metrics)
}

func parseSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			symbols = append(symbols, p)
		}
	}
	return symbols
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "can't read request body")
		return false
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		h.logger.Errorf("%s: can't marshal response", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		h.logger.Warnf("%s: can't write response", err)
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Message: message})
}
