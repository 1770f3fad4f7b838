package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/jarifuri/org-sql/internal/mapper"
	"github.com/jarifuri/org-sql/internal/sqlgen"
)

// Database dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Source   SourceConfig      `yaml:"source"`
	Database DatabaseConfig    `yaml:"database"`
	Mapping  MappingConfig     `yaml:"mapping"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return c.Mapping.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SourceConfig describes the org file tree to index.
type SourceConfig struct {
	Path         string   `yaml:"path"`
	Extension    string   `yaml:"extension"`
	TodoKeywords []string `yaml:"todo_keywords"`
	LogDrawer    string   `yaml:"log_drawer"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DatabaseConfig selects the target database. Path is the sqlite file;
// DSN is the postgres connection string.
type DatabaseConfig struct {
	Dialect string `yaml:"dialect"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Dialect == "" {
		c.Dialect = DialectSQLite
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dialect, validation.Required, validation.In(DialectSQLite, DialectPostgres)),
	); err != nil {
		return err
	}
	switch c.Dialect {
	case DialectSQLite:
		if c.Path == "" {
			return fmt.Errorf("database: dialect is %q but path is empty", DialectSQLite)
		}
	case DialectPostgres:
		if c.DSN == "" {
			return fmt.Errorf("database: dialect is %q but dsn is empty", DialectPostgres)
		}
	}
	return nil
}

// SQLDialect maps the configured name to the compiler dialect.
func (c *DatabaseConfig) SQLDialect() sqlgen.Dialect {
	if c.Dialect == DialectPostgres {
		return sqlgen.Postgres
	}
	return sqlgen.SQLite
}

// DataSource returns the driver DSN for the configured dialect.
func (c *DatabaseConfig) DataSource() string {
	if c.Dialect == DialectPostgres {
		return c.DSN
	}
	return c.Path
}

// ExclusionList unmarshals either a YAML sequence of names or the
// scalar "all".
type ExclusionList struct {
	All   bool
	Names []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *ExclusionList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s != "all" {
			return fmt.Errorf("exclusion: %q is not a list or \"all\"", s)
		}
		e.All = true
		return nil
	case yaml.SequenceNode:
		return node.Decode(&e.Names)
	default:
		return fmt.Errorf("exclusion: unsupported YAML node kind %d", node.Kind)
	}
}

func (e ExclusionList) exclusion() mapper.Exclusion {
	return mapper.Exclusion{All: e.All, Names: e.Names}
}

// MappingConfig holds the row-emission options.
type MappingConfig struct {
	ExcludedTags            ExclusionList     `yaml:"excluded_tags"`
	UseTagInheritance       bool              `yaml:"use_tag_inheritance"`
	ExcludeInheritedTags    bool              `yaml:"exclude_inherited_tags"`
	ExcludedLinkTypes       ExclusionList     `yaml:"excluded_link_types"`
	ExcludedTimestampTypes  ExclusionList     `yaml:"excluded_contents_timestamp_types"`
	ExcludedPlanningTypes   ExclusionList     `yaml:"excluded_planning_types"`
	ExcludedLogbookTypes    ExclusionList     `yaml:"excluded_logbook_types"`
	ExcludeClockNotes       bool              `yaml:"exclude_clock_notes"`
	LogbookTemplates        map[string]string `yaml:"logbook_templates"`
}

// Validate validates the mapping configuration.
func (c *MappingConfig) Validate() error {
	for _, name := range c.ExcludedPlanningTypes.Names {
		switch name {
		case "closed", "scheduled", "deadline":
		default:
			return fmt.Errorf("mapping: unknown planning type %q", name)
		}
	}
	for _, name := range c.ExcludedTimestampTypes.Names {
		switch name {
		case "active", "inactive":
		default:
			return fmt.Errorf("mapping: unknown timestamp type %q", name)
		}
	}
	return nil
}

// MapperConfig converts the YAML shape to the mapper's options.
func (c *Config) MapperConfig() mapper.Config {
	return mapper.Config{
		ExcludedTags:                   c.Mapping.ExcludedTags.exclusion(),
		UseTagInheritance:              c.Mapping.UseTagInheritance,
		ExcludeInheritedTags:           c.Mapping.ExcludeInheritedTags,
		ExcludedLinkTypes:              c.Mapping.ExcludedLinkTypes.exclusion(),
		ExcludedContentsTimestampTypes: c.Mapping.ExcludedTimestampTypes.exclusion(),
		ExcludedPlanningTypes:          c.Mapping.ExcludedPlanningTypes.exclusion(),
		ExcludedLogbookTypes:           c.Mapping.ExcludedLogbookTypes.exclusion(),
		ExcludeClockNotes:              c.Mapping.ExcludeClockNotes,
		LogbookTemplates:               c.Mapping.LogbookTemplates,
		LogDrawer:                      c.Source.LogDrawer,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Source: SourceConfig{
			Path:         "./org",
			Extension:    ".org",
			TodoKeywords: []string{"TODO", "DONE"},
			LogDrawer:    "LOGBOOK",
		},
		Database: DatabaseConfig{
			Dialect: DialectSQLite,
			Path:    "./org-sql.db",
		},
		Mapping: MappingConfig{
			UseTagInheritance: true,
		},
	}
}
