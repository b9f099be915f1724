package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fedecoop/padron/pkg/audit"
	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/engine"
)

// TableService is the engine surface the handlers consume.
type TableService interface {
	Create(ctx context.Context, table string, payload engine.Record) (engine.Record, error)
	Read(ctx context.Context, table string) (*engine.ReadResult, error)
	Search(ctx context.Context, table, field, text string) (*engine.ReadResult, error)
	SearchRange(ctx context.Context, table, field, from, to string) (*engine.ReadResult, error)
	Update(ctx context.Context, table, matchField, matchValue string, fields engine.Record) (engine.Record, error)
	Delete(ctx context.Context, table, matchField, matchValue string) (engine.Record, error)
}

// SchemaSource resolves table metadata for the schema and export endpoints.
type SchemaSource interface {
	Get(ctx context.Context, table string) (*catalog.TableSchema, error)
}

// AuditLister serves the audit listing endpoint.
type AuditLister interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

// ExportOptions carries export rendering settings from the config.
type ExportOptions struct {
	Delimiter     rune
	LeadingColumn string
}

type Server struct {
	Router *mux.Router

	tables  TableService
	schemas SchemaSource
	auditor AuditLister
	export  ExportOptions
	auth    *Authenticator
	log     *zap.Logger

	srv *http.Server
}

// NewServer wires the router and the HTTP server. auditor may be nil, which
// disables the audit listing endpoint.
func NewServer(
	addr string,
	tables TableService,
	schemas SchemaSource,
	auditor AuditLister,
	auth *Authenticator,
	export ExportOptions,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, router),
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	s := &Server{
		Router:  router,
		tables:  tables,
		schemas: schemas,
		auditor: auditor,
		export:  export,
		auth:    auth,
		log:     log,
		srv:     srv,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Router.HandleFunc("/health", s.handleHealth()).Methods("GET")

	api := s.Router.PathPrefix("/api").Subrouter()
	api.Use(requestIDMiddleware)
	if s.auth != nil {
		api.Use(s.auth.Middleware)
	}

	api.HandleFunc("/tables/{table}/schema", s.handleSchema()).Methods("GET")
	api.HandleFunc("/tables/{table}/export", s.handleExport()).Methods("GET")
	api.HandleFunc("/tables/{table}", s.handleRead()).Methods("GET")
	api.HandleFunc("/tables/{table}", s.handleCreate()).Methods("POST")
	api.HandleFunc("/tables/{table}", s.handleUpdate()).Methods("PUT")
	api.HandleFunc("/tables/{table}", s.handleDelete()).Methods("DELETE")

	if s.auditor != nil {
		api.HandleFunc("/audit", s.handleAuditList()).Methods("GET")
	}
}

// Start blocks serving requests until the listener fails.
func (s *Server) Start() error {
	s.log.Info("api server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
