// Package server provides the HTTP API over the generic table engine.
//
// It uses gorilla/mux for routing and gorilla/handlers for request logging.
// Handlers speak a uniform JSON envelope:
//
//	{"success": true,  "data": ..., "total": n, "primaryKeyColumn": "..."}
//	{"success": false, "error": "..."}
//
// and map the engine's typed errors onto HTTP status codes. Authentication
// is a bearer JWT issued by an external identity provider; the server only
// verifies the signature and lifts the claims into a principal.
//
// # Endpoints
//
//	GET    /api/tables/{table}          read, or search with ?field=&text=
//	                                    or ?field=&from=&to=
//	POST   /api/tables/{table}          create
//	PUT    /api/tables/{table}          update {matchField, matchValue, fields}
//	DELETE /api/tables/{table}          delete with ?field=&value=
//	GET    /api/tables/{table}/schema   describe
//	GET    /api/tables/{table}/export   CSV download
//	GET    /api/audit                   audit listing (admin only)
//	GET    /health
package server
