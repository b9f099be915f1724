package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fedecoop/padron/pkg/audit"
	"github.com/fedecoop/padron/pkg/principal"
)

// handleAuditList serves the audit trail, newest first. Admin only: the
// trail carries row images of every table.
func (s *Server) handleAuditList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleAdmin); err != nil {
			respondWithError(w, err)
			return
		}

		query := r.URL.Query()
		filter := audit.Filter{
			Actor:  query.Get("actor"),
			Table:  query.Get("table"),
			Action: audit.Action(query.Get("action")),
		}
		if v := query.Get("limit"); v != "" {
			if limit, err := strconv.Atoi(v); err == nil {
				filter.Limit = limit
			}
		}
		if v := query.Get("from"); v != "" {
			from, err := time.Parse("2006-01-02", v)
			if err != nil {
				respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "from must be YYYY-MM-DD"})
				return
			}
			filter.From = &from
		}
		if v := query.Get("to"); v != "" {
			to, err := time.Parse("2006-01-02", v)
			if err != nil {
				respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "to must be YYYY-MM-DD"})
				return
			}
			// Inclusive end of day.
			to = to.Add(24*time.Hour - time.Nanosecond)
			filter.To = &to
		}

		entries, err := s.auditor.List(r.Context(), filter)
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithResult(w, entries, len(entries), "")
	}
}
