package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/padron"
	ConfigFileName    = "padron.yml"
)

// EntityTable configures one canonical parent registry for foreign-key
// enrichment.
type EntityTable struct {
	Name           string `yaml:"name"`
	KeyColumn      string `yaml:"key_column"`
	DisplayColumn  string `yaml:"display_column"`
	LocalityColumn string `yaml:"locality_column"`
	ColumnHint     string `yaml:"column_hint"`
}

// Config holds all application settings.
type Config struct {
	// ListenAddress is the host:port the API server binds.
	ListenAddress string `yaml:"listen_address"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `yaml:"database_url"`

	// Namespace is the schema searched by catalog introspection.
	Namespace string `yaml:"namespace"`

	// TokenSigningKey verifies inbound bearer tokens. Tokens are issued by
	// an external identity provider sharing this key.
	TokenSigningKey string `yaml:"token_signing_key"`

	// EntityTables lists the parent registries joined into enriched reads.
	// Longer column hints must come first.
	EntityTables []EntityTable `yaml:"entity_tables"`

	// ExportLeadingColumn is pulled to the front of exported files when the
	// exported table has it.
	ExportLeadingColumn string `yaml:"export_leading_column"`

	// ExportDelimiter separates fields in exported files.
	ExportDelimiter string `yaml:"export_delimiter"`

	// AuditNormalize toggles accent folding of audit snapshot field names.
	AuditNormalize bool `yaml:"audit_normalize"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MaxOpenConns / MaxIdleConns bound the database pool.
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`

	// sources tracks where each value came from, for `padronctl config`.
	sources map[string]string
}

// Attribute is one configuration value with its provenance.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func newDefault() *Config {
	return &Config{
		ListenAddress: ":8090",
		Namespace:     "public",
		EntityTables: []EntityTable{
			{
				Name:           "mutuales",
				KeyColumn:      "matricula",
				DisplayColumn:  "razon_social",
				LocalityColumn: "localidad",
				ColumnHint:     "matricula_mutual",
			},
			{
				Name:           "cooperativas",
				KeyColumn:      "matricula",
				DisplayColumn:  "razon_social",
				LocalityColumn: "localidad",
				ColumnHint:     "matricula",
			},
		},
		ExportLeadingColumn: "matricula",
		ExportDelimiter:     ",",
		AuditNormalize:      true,
		LogLevel:            "info",
		MaxOpenConns:        25,
		MaxIdleConns:        5,
		sources:             make(map[string]string),
	}
}

// Load reads padron.yml from the given directory (DefaultConfigPath when
// empty) and overlays the PADRON_* environment on top. A missing file is
// not an error; a malformed one is. A .env file in the working directory is
// folded into the environment first, so local development does not need a
// shell wrapper.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := newDefault()
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	if configPath == "" {
		configPath = os.Getenv("PADRON_CONFIG_PATH")
	}
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	filePath := configPath + "/" + ConfigFileName
	if data, err := os.ReadFile(filePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (set it in %s or PADRON_DATABASE_URL)", filePath)
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"listen_address", "database_url", "namespace", "token_signing_key",
		"entity_tables", "export_leading_column", "export_delimiter",
		"audit_normalize", "log_level", "max_open_conns", "max_idle_conns",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.ListenAddress != "" {
		c.ListenAddress = file.ListenAddress
		c.sources["listen_address"] = "file"
	}
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = "file"
	}
	if file.Namespace != "" {
		c.Namespace = file.Namespace
		c.sources["namespace"] = "file"
	}
	if file.TokenSigningKey != "" {
		c.TokenSigningKey = file.TokenSigningKey
		c.sources["token_signing_key"] = "file"
	}
	if len(file.EntityTables) > 0 {
		c.EntityTables = file.EntityTables
		c.sources["entity_tables"] = "file"
	}
	if file.ExportLeadingColumn != "" {
		c.ExportLeadingColumn = file.ExportLeadingColumn
		c.sources["export_leading_column"] = "file"
	}
	if file.ExportDelimiter != "" {
		c.ExportDelimiter = file.ExportDelimiter
		c.sources["export_delimiter"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.MaxOpenConns != 0 {
		c.MaxOpenConns = file.MaxOpenConns
		c.sources["max_open_conns"] = "file"
	}
	if file.MaxIdleConns != 0 {
		c.MaxIdleConns = file.MaxIdleConns
		c.sources["max_idle_conns"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("PADRON_LISTEN_ADDRESS"); val != "" {
		c.ListenAddress = val
		c.sources["listen_address"] = "environment"
	}
	if val := os.Getenv("PADRON_DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("PADRON_NAMESPACE"); val != "" {
		c.Namespace = val
		c.sources["namespace"] = "environment"
	}
	if val := os.Getenv("PADRON_TOKEN_SIGNING_KEY"); val != "" {
		c.TokenSigningKey = val
		c.sources["token_signing_key"] = "environment"
	}
	if val := os.Getenv("PADRON_EXPORT_LEADING_COLUMN"); val != "" {
		c.ExportLeadingColumn = val
		c.sources["export_leading_column"] = "environment"
	}
	if val := os.Getenv("PADRON_EXPORT_DELIMITER"); val != "" {
		c.ExportDelimiter = val
		c.sources["export_delimiter"] = "environment"
	}
	if val := os.Getenv("PADRON_AUDIT_NORMALIZE"); val != "" {
		c.AuditNormalize = val == "true" || val == "1"
		c.sources["audit_normalize"] = "environment"
	}
	if val := os.Getenv("PADRON_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("PADRON_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxOpenConns = i
			c.sources["max_open_conns"] = "environment"
		}
	}
	if val := os.Getenv("PADRON_MAX_IDLE_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxIdleConns = i
			c.sources["max_idle_conns"] = "environment"
		}
	}
}

// Source returns where the named attribute's value came from: "default",
// "file", or "environment".
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Delimiter returns the export delimiter as a rune, falling back to comma
// for a malformed setting.
func (c *Config) Delimiter() rune {
	runes := []rune(c.ExportDelimiter)
	if len(runes) != 1 {
		return ','
	}
	return runes[0]
}

// Attributes returns every setting with its value and provenance, secrets
// redacted.
func (c *Config) Attributes() []Attribute {
	values := map[string]string{
		"listen_address":        c.ListenAddress,
		"database_url":          redact(c.DatabaseURL),
		"namespace":             c.Namespace,
		"token_signing_key":     redact(c.TokenSigningKey),
		"entity_tables":         entityTableNames(c.EntityTables),
		"export_leading_column": c.ExportLeadingColumn,
		"export_delimiter":      c.ExportDelimiter,
		"audit_normalize":       strconv.FormatBool(c.AuditNormalize),
		"log_level":             c.LogLevel,
		"max_open_conns":        strconv.Itoa(c.MaxOpenConns),
		"max_idle_conns":        strconv.Itoa(c.MaxIdleConns),
	}

	attrs := make([]Attribute, 0, len(values))
	for _, name := range attributeNames() {
		attrs = append(attrs, Attribute{Name: name, Value: values[name], Source: c.Source(name)})
	}
	return attrs
}

func entityTableNames(tables []EntityTable) string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return strings.Join(names, ",")
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return "<redacted>"
}
