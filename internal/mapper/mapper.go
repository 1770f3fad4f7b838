// Package mapper walks a parsed outline document once and derives the
// full relational row set for it: headlines, their ancestor closure,
// tags with inheritance, properties, timestamps, planning entries,
// links, clocks, and classified logbook records. All configuration is
// threaded in explicitly, so one Mapper may serve many files from
// concurrent goroutines.
package mapper

import (
	"github.com/jarifuri/org-sql/internal/logbook"
	"github.com/jarifuri/org-sql/internal/org"
	"github.com/jarifuri/org-sql/internal/schema"
	"github.com/jarifuri/org-sql/internal/sqlgen"
)

// Exclusion is either an explicit set of excluded names or the
// sentinel "all".
type Exclusion struct {
	All   bool
	Names []string
}

// ExcludeAll suppresses every row of a category.
func ExcludeAll() Exclusion {
	return Exclusion{All: true}
}

// Excludes reports whether name is filtered out.
func (e Exclusion) Excludes(name string) bool {
	if e.All {
		return true
	}
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Config holds the row-emission options. The zero value excludes
// nothing and disables tag inheritance.
type Config struct {
	ExcludedTags                   Exclusion
	UseTagInheritance              bool
	ExcludeInheritedTags           bool
	ExcludedLinkTypes              Exclusion
	ExcludedContentsTimestampTypes Exclusion // "active", "inactive"
	ExcludedPlanningTypes          Exclusion // "scheduled", "deadline", "closed"
	ExcludedLogbookTypes           Exclusion // entry-type tags, plus "clock"
	ExcludeClockNotes              bool
	LogbookTemplates               map[string]string
	LogDrawer                      string // threaded through to the parser by the caller
}

// RowSet maps table name to rows in emission (source) order.
type RowSet map[string][]sqlgen.Row

func (rs RowSet) add(table string, row sqlgen.Row) {
	rs[table] = append(rs[table], row)
}

// Mapper converts documents to row sets under one configuration.
type Mapper struct {
	cfg        Config
	classifier *logbook.Classifier
}

// New compiles the logbook templates and returns a ready mapper.
func New(cfg Config) (*Mapper, error) {
	c, err := logbook.NewClassifier(cfg.LogbookTemplates)
	if err != nil {
		return nil, err
	}
	return &Mapper{cfg: cfg, classifier: c}, nil
}

// Map derives every table's rows for one document. hash and size are
// the file's content identity as recorded in the files table.
func (m *Mapper) Map(doc *org.Document, hash string, size int64) RowSet {
	rs := make(RowSet)
	path := doc.Path

	rs.add(schema.TableFiles, sqlgen.Row{
		"file_path": path,
		"file_hash": hash,
		"file_size": int(size),
	})

	for _, tag := range dedupe(doc.FileTags) {
		if m.cfg.ExcludedTags.Excludes(tag) {
			continue
		}
		rs.add(schema.TableFileTags, sqlgen.Row{
			"file_path": path,
			"tag":       tag,
		})
	}

	for _, p := range doc.Properties {
		rs.add(schema.TableProperties, sqlgen.Row{
			"file_path":       path,
			"property_offset": p.Offset,
			"key_text":        p.Key,
			"val_text":        p.Value,
		})
		rs.add(schema.TableFileProperties, sqlgen.Row{
			"file_path":       path,
			"property_offset": p.Offset,
		})
	}

	doc.Walk(func(h *org.Headline, ancestors []*org.Headline) {
		m.mapHeadline(rs, doc, h, ancestors)
	})
	return rs
}

func (m *Mapper) mapHeadline(rs RowSet, doc *org.Document, h *org.Headline, ancestors []*org.Headline) {
	path := doc.Path

	rs.add(schema.TableHeadlines, sqlgen.Row{
		"file_path":       path,
		"headline_offset": h.Offset,
		"headline_text":   h.Text,
		"keyword":         nullableString(h.Keyword),
		"effort":          nullableInt(h.Effort),
		"priority":        nullableString(h.Priority),
		"is_archived":     h.Archived,
		"is_commented":    h.Commented,
		"content":         h.Content,
	})

	// One closure row per ancestor-stack entry, self included at depth
	// 0. Depth is the stack distance, so the walk stays linear in node
	// count.
	rs.add(schema.TableHeadlineClosures, sqlgen.Row{
		"file_path":       path,
		"headline_offset": h.Offset,
		"parent_offset":   h.Offset,
		"depth":           0,
	})
	for i := len(ancestors) - 1; i >= 0; i-- {
		rs.add(schema.TableHeadlineClosures, sqlgen.Row{
			"file_path":       path,
			"headline_offset": h.Offset,
			"parent_offset":   ancestors[i].Offset,
			"depth":           len(ancestors) - i,
		})
	}

	m.mapTags(rs, doc, h, ancestors)

	for _, p := range h.Properties {
		rs.add(schema.TableProperties, sqlgen.Row{
			"file_path":       path,
			"property_offset": p.Offset,
			"key_text":        p.Key,
			"val_text":        p.Value,
		})
		rs.add(schema.TableHeadlineProperties, sqlgen.Row{
			"file_path":       path,
			"property_offset": p.Offset,
			"headline_offset": h.Offset,
		})
	}

	for _, p := range h.Planning {
		if m.cfg.ExcludedPlanningTypes.Excludes(p.Type) {
			continue
		}
		rs.add(schema.TableTimestamps, timestampRow(path, h.Offset, p.Timestamp))
		rs.add(schema.TablePlanningEntries, sqlgen.Row{
			"file_path":        path,
			"headline_offset":  h.Offset,
			"planning_type":    p.Type,
			"timestamp_offset": p.Timestamp.Offset,
		})
	}

	for _, ts := range h.Timestamps {
		kind := "inactive"
		if ts.Active {
			kind = "active"
		}
		if m.cfg.ExcludedContentsTimestampTypes.Excludes(kind) {
			continue
		}
		rs.add(schema.TableTimestamps, timestampRow(path, h.Offset, ts))
	}

	for _, l := range h.Links {
		if m.cfg.ExcludedLinkTypes.Excludes(l.Type) {
			continue
		}
		rs.add(schema.TableLinks, sqlgen.Row{
			"file_path":       path,
			"headline_offset": h.Offset,
			"link_offset":     l.Offset,
			"link_path":       l.Path,
			"link_text":       l.Description,
			"link_type":       l.Type,
		})
	}

	m.mapLogbook(rs, path, h)
}

func (m *Mapper) mapTags(rs RowSet, doc *org.Document, h *org.Headline, ancestors []*org.Headline) {
	if m.cfg.ExcludedTags.All {
		return
	}
	seen := make(map[string]bool)
	for _, tag := range h.Tags {
		if seen[tag] || m.cfg.ExcludedTags.Excludes(tag) {
			continue
		}
		seen[tag] = true
		rs.add(schema.TableHeadlineTags, sqlgen.Row{
			"file_path":       doc.Path,
			"headline_offset": h.Offset,
			"tag":             tag,
			"is_inherited":    false,
		})
	}
	if !m.cfg.UseTagInheritance || m.cfg.ExcludeInheritedTags {
		return
	}
	var inherited []string
	inherited = append(inherited, doc.FileTags...)
	for _, a := range ancestors {
		inherited = append(inherited, a.Tags...)
	}
	for _, tag := range inherited {
		if seen[tag] || m.cfg.ExcludedTags.Excludes(tag) {
			continue
		}
		seen[tag] = true
		rs.add(schema.TableHeadlineTags, sqlgen.Row{
			"file_path":       doc.Path,
			"headline_offset": h.Offset,
			"tag":             tag,
			"is_inherited":    true,
		})
	}
}

func (m *Mapper) mapLogbook(rs RowSet, path string, h *org.Headline) {
	if len(h.Logbook) == 0 {
		return
	}
	res := m.classifier.Classify(h.Logbook)

	if !m.cfg.ExcludedLogbookTypes.Excludes("clock") {
		for _, c := range res.Clocks {
			note := nullableString(c.Note)
			if m.cfg.ExcludeClockNotes {
				note = nil
			}
			rs.add(schema.TableClocks, sqlgen.Row{
				"file_path":       path,
				"headline_offset": h.Offset,
				"clock_offset":    c.Offset,
				"time_start":      c.Start,
				"time_end":        nullableInt64(c.End),
				"clock_note":      note,
			})
		}
	}

	for _, e := range res.Entries {
		if m.cfg.ExcludedLogbookTypes.Excludes(e.Type) {
			continue
		}
		rs.add(schema.TableLogbookEntries, sqlgen.Row{
			"file_path":       path,
			"headline_offset": h.Offset,
			"entry_offset":    e.Offset,
			"entry_type":      e.Type,
			"time_logged":     nullableInt64(e.TimeLogged),
			"header":          e.Header,
			"note":            nullableString(e.Note),
		})
		switch {
		case e.Type == logbook.EntryState:
			rs.add(schema.TableStateChanges, sqlgen.Row{
				"file_path":    path,
				"entry_offset": e.Offset,
				"state_old":    e.StateOld,
				"state_new":    e.StateNew,
			})
		case e.OldTimestamp != nil:
			rs.add(schema.TableTimestamps, timestampRow(path, h.Offset, *e.OldTimestamp))
			rs.add(schema.TablePlanningChanges, sqlgen.Row{
				"file_path":        path,
				"entry_offset":     e.Offset,
				"timestamp_offset": e.OldTimestamp.Offset,
			})
		}
	}
}

func timestampRow(path string, headlineOffset int, ts org.Timestamp) sqlgen.Row {
	row := sqlgen.Row{
		"file_path":        path,
		"headline_offset":  headlineOffset,
		"timestamp_offset": ts.Offset,
		"raw_value":        ts.Raw,
		"is_active":        ts.Active,
		"warning_type":     nil,
		"warning_value":    nil,
		"warning_unit":     nil,
		"repeat_type":      nil,
		"repeat_value":     nil,
		"repeat_unit":      nil,
		"time_start":       ts.Start,
		"time_end":         nullableInt64(ts.End),
		"start_is_long":    ts.StartIsLong,
		"end_is_long":      ts.EndIsLong,
	}
	if ts.Warning != nil {
		row["warning_type"] = ts.Warning.Type
		row["warning_value"] = ts.Warning.Value
		row["warning_unit"] = ts.Warning.Unit
	}
	if ts.Repeater != nil {
		row["repeat_type"] = ts.Repeater.Type
		row["repeat_value"] = ts.Repeater.Value
		row["repeat_unit"] = ts.Repeater.Unit
	}
	return row
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
