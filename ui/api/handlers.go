package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/ui/service"
)

// maxActivityLimit bounds the activities endpoint.
const maxActivityLimit = 100

// Response wraps all API responses.
type Response struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	PageSize   int    `json:"page_size"`
	TotalCount int    `json:"total_count,omitempty"`
	HasMore    bool   `json:"has_more,omitempty"`
	Search     string `json:"search,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

// writeJSONWithMeta writes a JSON response with metadata.
func writeJSONWithMeta(w http.ResponseWriter, status int, data any, meta *Meta) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data, Meta: meta})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Error: &APIError{Code: code, Message: message},
	})
}

// writePage writes one page of a list with its pagination in Meta.
func writePage[T any](w http.ResponseWriter, p *service.Page[T]) {
	meta := &Meta{
		Page:       p.Page,
		TotalPages: p.TotalPages,
		PageSize:   p.PageSize,
		HasMore:    p.HasNext(),
		Search:     p.Search,
	}
	if p.TotalCount > 0 {
		meta.TotalCount = p.TotalCount
	}
	writeJSONWithMeta(w, http.StatusOK, p.Items, meta)
}

// writeServiceError maps an upstream failure onto a status and code.
func (rt *router) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := motoadmin.UserMessage(err)
	switch {
	case motoadmin.IsAuthError(err):
		if rt.config.EndSession != nil {
			if endErr := rt.config.EndSession(w, r); endErr != nil && rt.config.Logger != nil {
				rt.config.Logger.Warn("failed to end session", "error", endErr.Error())
			}
		}
		writeError(w, http.StatusUnauthorized, "unauthorized", msg)
	case errors.Is(err, motoadmin.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", msg)
	case errors.Is(err, motoadmin.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", msg)
	default:
		if rt.config.Logger != nil {
			rt.config.Logger.Warn("api request failed", "error", err.Error())
		}
		writeError(w, http.StatusBadGateway, "upstream_error", msg)
	}
}

// parseInt parses an integer from a query parameter with a default.
func parseInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// parseList reads the page and search parameters shared by list endpoints.
func parseList(r *http.Request) (int, string) {
	return service.ValidatePage(parseInt(r, "page", 1)), service.ValidateSearch(r.URL.Query().Get("search"))
}

// Dashboard handlers

func (rt *router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := rt.svc.GetDashboard(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (rt *router) handleListActivities(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r, "limit", service.DefaultActivityLimit)
	if limit < 1 || limit > maxActivityLimit {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
		return
	}
	entries, err := rt.svc.ListActivities(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load activities")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Motorcycle handlers

func (rt *router) handleListMotorcycles(w http.ResponseWriter, r *http.Request) {
	page, search := parseList(r)
	list, err := rt.svc.ListMotorcycles(r.Context(), page, search)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writePage(w, list)
}

// User handlers

func (rt *router) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, search := parseList(r)
	list, err := rt.svc.ListUsers(r.Context(), page, search)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writePage(w, list)
}

// Rental handlers

func (rt *router) handleListRentals(w http.ResponseWriter, r *http.Request) {
	page, search := parseList(r)
	list, err := rt.svc.ListRentals(r.Context(), page, search)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writePage(w, list)
}
