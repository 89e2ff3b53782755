package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/Rana718/sheetsync/internal/filter"
	"github.com/Rana718/sheetsync/internal/types"
	"github.com/spf13/viper"
)

// ColumnMapEnv holds a JSON object mapping sheet headers to columns when
// neither target.column_map nor target.column_map_file is set.
const ColumnMapEnv = "COLUMN_MAP"

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Config struct {
	Version    string   `json:"version" mapstructure:"version"`
	Database   Database `json:"database" mapstructure:"database"`
	Source     Source   `json:"source" mapstructure:"source"`
	Target     Target   `json:"target" mapstructure:"target"`
	Schema     Schema   `json:"schema" mapstructure:"schema"`
	Filter     Filter   `json:"filter" mapstructure:"filter"`
	BackupPath string   `json:"backup_path" mapstructure:"backup_path"`
	Audit      Audit    `json:"audit" mapstructure:"audit"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Source struct {
	Kind      string `json:"kind" mapstructure:"kind"` // json, csv, tsv or xlsx; empty uses the file extension
	Path      string `json:"path" mapstructure:"path"`
	Sheet     string `json:"sheet,omitempty" mapstructure:"sheet"`
	Delimiter string `json:"delimiter,omitempty" mapstructure:"delimiter"`
}

type Target struct {
	Table         string             `json:"table" mapstructure:"table"`
	PrimaryKey    string             `json:"primary_key,omitempty" mapstructure:"primary_key"`
	ColumnMap     []types.ColumnPair `json:"column_map,omitempty" mapstructure:"column_map"`
	ColumnMapFile string             `json:"column_map_file,omitempty" mapstructure:"column_map_file"`
}

type Schema struct {
	FoldAccents         bool `json:"fold_accents" mapstructure:"fold_accents"`
	MaxIdentifierLength int  `json:"max_identifier_length" mapstructure:"max_identifier_length"`
}

type Filter struct {
	RequiredGroups []filter.RequiredGroup `json:"required_groups" mapstructure:"required_groups"`
	Deny           []filter.DenyRule      `json:"deny" mapstructure:"deny"`
}

type Audit struct {
	Path       string `json:"path" mapstructure:"path"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
}

// DefaultConfig returns the configuration written by `sheetsync init`.
func DefaultConfig() *Config {
	cfg := &Config{
		Source: Source{Kind: "json", Path: ".tmp/sheet_data.json"},
		Target: Target{Table: "sheet_data"},
		Filter: Filter{
			RequiredGroups: []filter.RequiredGroup{},
			Deny:           []filter.DenyRule{},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Schema.MaxIdentifierLength == 0 {
		c.Schema.MaxIdentifierLength = 63
	}
	if c.BackupPath == "" {
		c.BackupPath = "db_backup"
	}
	if c.Audit.Path == "" {
		c.Audit.Path = ".sheetsync/audit.log"
	}
	if c.Audit.MaxSizeMB == 0 {
		c.Audit.MaxSizeMB = 10
	}
	if c.Audit.MaxBackups == 0 {
		c.Audit.MaxBackups = 5
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// Provider returns the canonical provider name.
func (c *Config) Provider() string {
	switch c.Database.Provider {
	case "postgresql", "postgres":
		return "postgresql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return c.Database.Provider
	}
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.Source.Path == "" {
		return fmt.Errorf("source.path cannot be empty")
	}

	if !identifierPattern.MatchString(c.Target.Table) {
		return fmt.Errorf("invalid target.table %q: must match %s", c.Target.Table, identifierPattern.String())
	}

	if c.Schema.MaxIdentifierLength < 8 {
		return fmt.Errorf("schema.max_identifier_length must be at least 8, got %d", c.Schema.MaxIdentifierLength)
	}

	if _, err := filter.New(c.Filter.RequiredGroups, c.Filter.Deny); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	return nil
}

// ValidateUpsert checks the settings only the upsert strategy needs and
// returns the resolved column mapping.
func (c *Config) ValidateUpsert() (types.ColumnMapping, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !identifierPattern.MatchString(c.Target.PrimaryKey) {
		return nil, fmt.Errorf("invalid target.primary_key %q: upsert needs the name of an existing key column", c.Target.PrimaryKey)
	}

	mapping, err := c.ColumnMapping()
	if err != nil {
		return nil, err
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("upsert needs a column mapping: set target.column_map, target.column_map_file or %s", ColumnMapEnv)
	}

	hasKey := false
	for _, pair := range mapping {
		if !identifierPattern.MatchString(pair.Column) {
			return nil, fmt.Errorf("invalid column %q for header %q", pair.Column, pair.Header)
		}
		if pair.Column == c.Target.PrimaryKey {
			hasKey = true
		}
	}
	if !hasKey {
		return nil, fmt.Errorf("column mapping does not map any header to primary key %q", c.Target.PrimaryKey)
	}
	return mapping, nil
}

// ColumnMapping resolves the upsert mapping from the inline list, the
// mapping file or the COLUMN_MAP environment variable, in that order.
func (c *Config) ColumnMapping() (types.ColumnMapping, error) {
	switch {
	case len(c.Target.ColumnMap) > 0:
		return checkMapping(types.ColumnMapping(c.Target.ColumnMap))
	case c.Target.ColumnMapFile != "":
		data, err := os.ReadFile(c.Target.ColumnMapFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read column map file: %w", err)
		}
		return ParseColumnMap(data)
	default:
		if raw := os.Getenv(ColumnMapEnv); raw != "" {
			m, err := ParseColumnMap([]byte(raw))
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", ColumnMapEnv, err)
			}
			return m, nil
		}
	}
	return nil, nil
}
