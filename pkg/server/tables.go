package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fedecoop/padron/pkg/engine"
	"github.com/fedecoop/padron/pkg/export"
	"github.com/fedecoop/padron/pkg/principal"
)

// requireRole gates a handler by role. When the server runs without an
// authenticator there is no principal to check and every request passes;
// that mode is for local development only.
func (s *Server) requireRole(r *http.Request, required principal.Role) error {
	if s.auth == nil {
		return nil
	}
	p, _ := principal.FromContext(r.Context())
	return p.RequireRole(required)
}

func (s *Server) handleRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleReader); err != nil {
			respondWithError(w, err)
			return
		}

		table := mux.Vars(r)["table"]
		query := r.URL.Query()
		field := query.Get("field")

		var (
			result *engine.ReadResult
			err    error
		)
		switch {
		case field != "" && (query.Get("from") != "" || query.Get("to") != ""):
			result, err = s.tables.SearchRange(r.Context(), table, field, query.Get("from"), query.Get("to"))
		case field != "":
			result, err = s.tables.Search(r.Context(), table, field, query.Get("text"))
		default:
			result, err = s.tables.Read(r.Context(), table)
		}
		if err != nil {
			respondWithError(w, err)
			return
		}

		respondWithResult(w, result.Rows, result.Total, result.PrimaryKey)
	}
}

func (s *Server) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleOperator); err != nil {
			respondWithError(w, err)
			return
		}

		table := mux.Vars(r)["table"]
		var payload engine.Record
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "malformed request body"})
			return
		}

		row, err := s.tables.Create(r.Context(), table, payload)
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithData(w, http.StatusCreated, row)
	}
}

// updateRequest is the PUT body: which row to touch and what to set.
type updateRequest struct {
	MatchField string        `json:"matchField"`
	MatchValue string        `json:"matchValue"`
	Fields     engine.Record `json:"fields"`
}

func (s *Server) handleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleOperator); err != nil {
			respondWithError(w, err)
			return
		}

		table := mux.Vars(r)["table"]
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "malformed request body"})
			return
		}
		if req.MatchField == "" {
			respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "matchField is required"})
			return
		}

		row, err := s.tables.Update(r.Context(), table, req.MatchField, req.MatchValue, req.Fields)
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, row)
	}
}

func (s *Server) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleOperator); err != nil {
			respondWithError(w, err)
			return
		}

		table := mux.Vars(r)["table"]
		query := r.URL.Query()
		field := query.Get("field")
		if field == "" {
			respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "field parameter required"})
			return
		}

		row, err := s.tables.Delete(r.Context(), table, field, query.Get("value"))
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, row)
	}
}

func (s *Server) handleSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleReader); err != nil {
			respondWithError(w, err)
			return
		}

		schema, err := s.schemas.Get(r.Context(), mux.Vars(r)["table"])
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, schema)
	}
}

func (s *Server) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.requireRole(r, principal.RoleReader); err != nil {
			respondWithError(w, err)
			return
		}

		table := mux.Vars(r)["table"]
		schema, err := s.schemas.Get(r.Context(), table)
		if err != nil {
			respondWithError(w, err)
			return
		}
		result, err := s.tables.Read(r.Context(), table)
		if err != nil {
			respondWithError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+".csv"))

		writeErr := export.Write(w, schema, result.Rows, export.Options{
			Delimiter:         s.export.Delimiter,
			LeadingColumn:     s.export.LeadingColumn,
			IncludeEnrichment: hasEnrichment(result.Rows),
		})
		if writeErr != nil {
			s.log.Error("export write failed", zap.String("table", table), zap.Error(writeErr))
		}
	}
}

func hasEnrichment(rows []engine.Record) bool {
	if len(rows) == 0 {
		return false
	}
	_, ok := rows[0][engine.EntityNameField]
	return ok
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
