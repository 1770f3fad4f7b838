// Package schema declares the relational layout the mapper writes into
// and the SQL compiler renders from. The registry is pure data: tables
// in declaration order (foreign-key parents first), columns with their
// semantic types, and constraints. Nothing here mutates after Default()
// returns.
package schema

// ColumnType is the semantic type of a column, independent of how a
// dialect spells it in DDL.
type ColumnType string

const (
	TypeBool ColumnType = "boolean"
	TypeEnum ColumnType = "enum"
	TypeInt  ColumnType = "integer"
	TypeText ColumnType = "text"
)

// Action is a referential action on a foreign key.
type Action string

const (
	Cascade  Action = "CASCADE"
	NoAction Action = "NO ACTION"
)

// Column describes one column. Allowed is set only for enum columns.
type Column struct {
	Name    string
	Type    ColumnType
	Allowed []string
}

// ForeignKey links a set of local columns to a parent table.
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
	OnDelete   Action
	OnUpdate   Action
}

// Table is one table declaration.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// Column returns the named column declaration.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Schema is an ordered set of table declarations.
type Schema struct {
	Tables []Table
}

// Table returns the named table declaration.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Table names, in declaration order.
const (
	TableFiles              = "files"
	TableHeadlines          = "headlines"
	TableHeadlineClosures   = "headline_closures"
	TableTimestamps         = "timestamps"
	TablePlanningEntries    = "planning_entries"
	TableFileTags           = "file_tags"
	TableHeadlineTags       = "headline_tags"
	TableProperties         = "properties"
	TableFileProperties     = "file_properties"
	TableHeadlineProperties = "headline_properties"
	TableLinks              = "links"
	TableClocks             = "clocks"
	TableLogbookEntries     = "logbook_entries"
	TableStateChanges       = "state_changes"
	TablePlanningChanges    = "planning_changes"
)

var timeUnits = []string{"hour", "day", "week", "month", "year"}

// Default returns the registry for org documents.
func Default() Schema {
	return Schema{Tables: []Table{
		{
			Name: TableFiles,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "file_hash", Type: TypeText},
				{Name: "file_size", Type: TypeInt},
			},
			PrimaryKey: []string{"file_path"},
		},
		{
			Name: TableHeadlines,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "headline_text", Type: TypeText},
				{Name: "keyword", Type: TypeText},
				{Name: "effort", Type: TypeInt},
				{Name: "priority", Type: TypeText},
				{Name: "is_archived", Type: TypeBool},
				{Name: "is_commented", Type: TypeBool},
				{Name: "content", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "headline_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path"},
				RefTable:   TableFiles,
				RefColumns: []string{"file_path"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableHeadlineClosures,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "parent_offset", Type: TypeInt},
				{Name: "depth", Type: TypeInt},
			},
			PrimaryKey: []string{"file_path", "headline_offset", "parent_offset"},
			ForeignKeys: []ForeignKey{
				{
					Columns:    []string{"file_path", "headline_offset"},
					RefTable:   TableHeadlines,
					RefColumns: []string{"file_path", "headline_offset"},
					OnDelete:   Cascade,
					OnUpdate:   Cascade,
				},
				{
					Columns:    []string{"file_path", "parent_offset"},
					RefTable:   TableHeadlines,
					RefColumns: []string{"file_path", "headline_offset"},
					OnDelete:   Cascade,
					OnUpdate:   Cascade,
				},
			},
		},
		{
			Name: TableTimestamps,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "timestamp_offset", Type: TypeInt},
				{Name: "raw_value", Type: TypeText},
				{Name: "is_active", Type: TypeBool},
				{Name: "warning_type", Type: TypeEnum, Allowed: []string{"all", "first"}},
				{Name: "warning_value", Type: TypeInt},
				{Name: "warning_unit", Type: TypeEnum, Allowed: timeUnits},
				{Name: "repeat_type", Type: TypeEnum, Allowed: []string{"catch-up", "restart", "cumulate"}},
				{Name: "repeat_value", Type: TypeInt},
				{Name: "repeat_unit", Type: TypeEnum, Allowed: timeUnits},
				{Name: "time_start", Type: TypeInt},
				{Name: "time_end", Type: TypeInt},
				{Name: "start_is_long", Type: TypeBool},
				{Name: "end_is_long", Type: TypeBool},
			},
			PrimaryKey: []string{"file_path", "timestamp_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "headline_offset"},
				RefTable:   TableHeadlines,
				RefColumns: []string{"file_path", "headline_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TablePlanningEntries,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "planning_type", Type: TypeEnum, Allowed: []string{"closed", "scheduled", "deadline"}},
				{Name: "timestamp_offset", Type: TypeInt},
			},
			PrimaryKey: []string{"file_path", "headline_offset", "planning_type"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "timestamp_offset"},
				RefTable:   TableTimestamps,
				RefColumns: []string{"file_path", "timestamp_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableFileTags,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "tag", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "tag"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path"},
				RefTable:   TableFiles,
				RefColumns: []string{"file_path"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableHeadlineTags,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "tag", Type: TypeText},
				{Name: "is_inherited", Type: TypeBool},
			},
			PrimaryKey: []string{"file_path", "headline_offset", "tag"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "headline_offset"},
				RefTable:   TableHeadlines,
				RefColumns: []string{"file_path", "headline_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableProperties,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "property_offset", Type: TypeInt},
				{Name: "key_text", Type: TypeText},
				{Name: "val_text", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "property_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path"},
				RefTable:   TableFiles,
				RefColumns: []string{"file_path"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableFileProperties,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "property_offset", Type: TypeInt},
			},
			PrimaryKey: []string{"file_path", "property_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "property_offset"},
				RefTable:   TableProperties,
				RefColumns: []string{"file_path", "property_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableHeadlineProperties,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "property_offset", Type: TypeInt},
				{Name: "headline_offset", Type: TypeInt},
			},
			PrimaryKey: []string{"file_path", "property_offset"},
			ForeignKeys: []ForeignKey{
				{
					Columns:    []string{"file_path", "property_offset"},
					RefTable:   TableProperties,
					RefColumns: []string{"file_path", "property_offset"},
					OnDelete:   Cascade,
					OnUpdate:   Cascade,
				},
				{
					Columns:    []string{"file_path", "headline_offset"},
					RefTable:   TableHeadlines,
					RefColumns: []string{"file_path", "headline_offset"},
					OnDelete:   Cascade,
					OnUpdate:   Cascade,
				},
			},
		},
		{
			Name: TableLinks,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "link_offset", Type: TypeInt},
				{Name: "link_path", Type: TypeText},
				{Name: "link_text", Type: TypeText},
				{Name: "link_type", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "link_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "headline_offset"},
				RefTable:   TableHeadlines,
				RefColumns: []string{"file_path", "headline_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableClocks,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "clock_offset", Type: TypeInt},
				{Name: "time_start", Type: TypeInt},
				{Name: "time_end", Type: TypeInt},
				{Name: "clock_note", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "clock_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "headline_offset"},
				RefTable:   TableHeadlines,
				RefColumns: []string{"file_path", "headline_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableLogbookEntries,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "headline_offset", Type: TypeInt},
				{Name: "entry_offset", Type: TypeInt},
				{Name: "entry_type", Type: TypeText},
				{Name: "time_logged", Type: TypeInt},
				{Name: "header", Type: TypeText},
				{Name: "note", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "entry_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "headline_offset"},
				RefTable:   TableHeadlines,
				RefColumns: []string{"file_path", "headline_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TableStateChanges,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "entry_offset", Type: TypeInt},
				{Name: "state_old", Type: TypeText},
				{Name: "state_new", Type: TypeText},
			},
			PrimaryKey: []string{"file_path", "entry_offset"},
			ForeignKeys: []ForeignKey{{
				Columns:    []string{"file_path", "entry_offset"},
				RefTable:   TableLogbookEntries,
				RefColumns: []string{"file_path", "entry_offset"},
				OnDelete:   Cascade,
				OnUpdate:   Cascade,
			}},
		},
		{
			Name: TablePlanningChanges,
			Columns: []Column{
				{Name: "file_path", Type: TypeText},
				{Name: "entry_offset", Type: TypeInt},
				{Name: "timestamp_offset", Type: TypeInt},
			},
			PrimaryKey: []string{"file_path", "entry_offset"},
			ForeignKeys: []ForeignKey{
				{
					Columns:    []string{"file_path", "entry_offset"},
					RefTable:   TableLogbookEntries,
					RefColumns: []string{"file_path", "entry_offset"},
					OnDelete:   Cascade,
					OnUpdate:   Cascade,
				},
				{
					Columns:    []string{"file_path", "timestamp_offset"},
					RefTable:   TableTimestamps,
					RefColumns: []string{"file_path", "timestamp_offset"},
					OnDelete:   Cascade,
					OnUpdate:   Cascade,
				},
			},
		},
	}}
}
