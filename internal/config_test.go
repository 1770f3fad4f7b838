package internal

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDatabaseConfig_EmptyDialectDefaultsSQLite(t *testing.T) {
	cfg := DatabaseConfig{Path: "x.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty dialect should default to sqlite: %v", err)
	}
	if cfg.Dialect != DialectSQLite {
		t.Errorf("dialect = %q, want %q", cfg.Dialect, DialectSQLite)
	}
}

func TestDatabaseConfig_SQLiteRequiresPath(t *testing.T) {
	cfg := DatabaseConfig{Dialect: DialectSQLite}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("sqlite without path should fail")
	}
	if !strings.Contains(err.Error(), "path is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDatabaseConfig_PostgresRequiresDSN(t *testing.T) {
	cfg := DatabaseConfig{Dialect: DialectPostgres}
	if err := cfg.Validate(); err == nil {
		t.Fatal("postgres without dsn should fail")
	}
	cfg.DSN = "postgres://localhost/org"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("postgres with dsn should pass: %v", err)
	}
	if cfg.DataSource() != cfg.DSN {
		t.Errorf("data source = %q", cfg.DataSource())
	}
}

func TestDatabaseConfig_InvalidDialect(t *testing.T) {
	cfg := DatabaseConfig{Dialect: "oracle", Path: "x.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid dialect should fail validation")
	}
}

func TestSourceConfig_RequiresPath(t *testing.T) {
	cfg := SourceConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty source path should fail")
	}
}

func TestExclusionList_UnmarshalSequence(t *testing.T) {
	var e ExclusionList
	if err := yaml.Unmarshal([]byte("[noexport, private]"), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.All || len(e.Names) != 2 || e.Names[0] != "noexport" {
		t.Errorf("exclusion = %+v", e)
	}
}

func TestExclusionList_UnmarshalAll(t *testing.T) {
	var e ExclusionList
	if err := yaml.Unmarshal([]byte("all"), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.All {
		t.Errorf("exclusion = %+v", e)
	}
}

func TestExclusionList_UnmarshalBadScalar(t *testing.T) {
	var e ExclusionList
	if err := yaml.Unmarshal([]byte("everything"), &e); err == nil {
		t.Fatal("scalar other than \"all\" should fail")
	}
}

func TestMappingConfig_UnknownPlanningType(t *testing.T) {
	cfg := MappingConfig{
		ExcludedPlanningTypes: ExclusionList{Names: []string{"someday"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown planning type should fail validation")
	}
}

func TestMappingConfig_UnknownTimestampType(t *testing.T) {
	cfg := MappingConfig{
		ExcludedTimestampTypes: ExclusionList{Names: []string{"sideways"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown timestamp type should fail validation")
	}
}

func TestFullConfig_ValidationChained(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	cfg.Database.Dialect = DialectPostgres
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch database error")
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	src := `
app:
  log_level: -4
source:
  path: /notes
  extension: .org
  todo_keywords: [TODO, NEXT, DONE]
  log_drawer: LOGBOOK
database:
  dialect: postgres
  dsn: postgres://localhost/org?sslmode=disable
mapping:
  excluded_tags: all
  use_tag_inheritance: true
  excluded_link_types: [http]
  logbook_templates:
    review: Reviewed by %u on %t
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Source.Path != "/notes" || len(cfg.Source.TodoKeywords) != 3 {
		t.Errorf("source = %+v", cfg.Source)
	}

	mc := cfg.MapperConfig()
	if !mc.ExcludedTags.All {
		t.Error("excluded_tags: all not carried through")
	}
	if !mc.ExcludedLinkTypes.Excludes("http") {
		t.Error("link exclusion not carried through")
	}
	if mc.LogbookTemplates["review"] == "" {
		t.Error("logbook template not carried through")
	}
	if mc.LogDrawer != "LOGBOOK" {
		t.Errorf("log drawer = %q", mc.LogDrawer)
	}
}
