// Package main implements padronctl, the CLI for the padrón registry
// server.
//
// The server exposes a generic CRUD and audit API over the cooperative and
// mutual-association registries. Tables are discovered at runtime from the
// database catalog; there are no per-table models.
//
// # Architecture
//
//   - pkg/server: HTTP server and routing
//   - pkg/engine: generic CRUD executor and foreign-key enrichment
//   - pkg/catalog: schema introspection, cache, and search conditions
//   - pkg/audit: audit trail (database store + syslog line)
//   - pkg/export: delimited-text export
//   - pkg/db: database connection utilities
//   - pkg/config: configuration management
//
// # Quick Start
//
//	# Run database migrations
//	padronctl db migrate
//
//	# Start the server
//	padronctl server
//
//	# Inspect a table
//	padronctl describe socios
//
// # Environment Variables
//
//   - PADRON_DATABASE_URL: PostgreSQL connection string
//   - PADRON_LISTEN_ADDRESS: server bind address (default :8090)
//   - PADRON_TOKEN_SIGNING_KEY: bearer-token verification key
//   - PADRON_LOG_LEVEL: log level (debug, info, warn, error)
//   - PADRON_CONFIG_PATH: directory holding padron.yml
package main
