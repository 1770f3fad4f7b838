package logbook

import (
	"testing"
	"time"

	"github.com/jarifuri/org-sql/internal/org"
)

func newClassifier(t *testing.T, user map[string]string) *Classifier {
	t.Helper()
	c, err := NewClassifier(user)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func item(offset int, header string) org.LogbookItem {
	return org.LogbookItem{Offset: offset, HeaderOffset: offset + 2, Header: header}
}

func TestClassify_StateChange(t *testing.T) {
	c := newClassifier(t, nil)
	header := `State "DONE" from "TODO" [2112-01-03 Sun]`
	res := c.Classify([]org.LogbookItem{item(100, header)})

	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Type != EntryState {
		t.Fatalf("type = %q, want state", e.Type)
	}
	if e.Header != header {
		t.Errorf("header = %q", e.Header)
	}
	if e.StateOld != "TODO" || e.StateNew != "DONE" {
		t.Errorf("old/new = %q/%q, want TODO/DONE", e.StateOld, e.StateNew)
	}
	if e.TimeLogged == nil {
		t.Fatal("time logged not extracted")
	}
	want := time.Date(2112, time.January, 3, 0, 0, 0, 0, time.UTC).Unix()
	if *e.TimeLogged != want {
		t.Errorf("time logged = %d, want %d", *e.TimeLogged, want)
	}
}

func TestClassify_NoteWithBody(t *testing.T) {
	c := newClassifier(t, nil)
	it := item(1, "Note taken on [2021-06-01 Tue 09:30]")
	it.Note = "remember the milk"
	res := c.Classify([]org.LogbookItem{it})

	if len(res.Entries) != 1 || res.Entries[0].Type != EntryNote {
		t.Fatalf("entries = %+v", res.Entries)
	}
	if res.Entries[0].Note != "remember the milk" {
		t.Errorf("note = %q", res.Entries[0].Note)
	}
}

func TestClassify_RescheduleSynthesizesOldTimestamp(t *testing.T) {
	c := newClassifier(t, nil)
	header := `Rescheduled from "[2021-01-01 Fri]" on [2021-01-02 Sat 10:00]`
	res := c.Classify([]org.LogbookItem{item(50, header)})

	e := res.Entries[0]
	if e.Type != EntryReschedule {
		t.Fatalf("type = %q", e.Type)
	}
	if e.OldTimestamp == nil {
		t.Fatal("old timestamp not synthesized")
	}
	want := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	if e.OldTimestamp.Start != want {
		t.Errorf("old start = %d, want %d", e.OldTimestamp.Start, want)
	}
	if e.OldTimestamp.Active {
		t.Error("old timestamp should be inactive")
	}
	if e.TimeLogged == nil {
		t.Error("time logged not extracted")
	}
	// The synthesized timestamp's offset must land inside the header.
	if e.OldTimestamp.Offset <= e.Offset {
		t.Errorf("old timestamp offset = %d, entry offset = %d", e.OldTimestamp.Offset, e.Offset)
	}
}

func TestClassify_DeletedPlanningVariants(t *testing.T) {
	c := newClassifier(t, nil)
	cases := []struct {
		header string
		want   string
	}{
		{`Not scheduled, was "[2021-03-01 Mon]" on [2021-03-02 Tue]`, EntryDelSchedule},
		{`New deadline from "[2021-03-05 Fri]" on [2021-03-02 Tue]`, EntryRedeadline},
		{`Removed deadline, was "[2021-03-05 Fri]" on [2021-03-02 Tue]`, EntryDelDeadline},
	}
	for _, tc := range cases {
		res := c.Classify([]org.LogbookItem{item(1, tc.header)})
		if res.Entries[0].Type != tc.want {
			t.Errorf("%q: type = %q, want %q", tc.header, res.Entries[0].Type, tc.want)
		}
		if res.Entries[0].OldTimestamp == nil {
			t.Errorf("%q: no old timestamp", tc.header)
		}
	}
}

func TestClassify_UnmatchedHeaderIsNone(t *testing.T) {
	c := newClassifier(t, nil)
	it := item(1, "something freeform happened")
	it.Note = "with details"
	res := c.Classify([]org.LogbookItem{it})

	e := res.Entries[0]
	if e.Type != EntryNone {
		t.Errorf("type = %q, want none", e.Type)
	}
	if e.TimeLogged != nil || e.OldTimestamp != nil || e.StateOld != "" {
		t.Error("none entry should carry no structured fields")
	}
	if e.Note != "with details" {
		t.Errorf("note = %q", e.Note)
	}
}

func TestClassify_Clocks(t *testing.T) {
	c := newClassifier(t, nil)
	items := []org.LogbookItem{
		{Offset: 10, HeaderOffset: 10, Clock: true,
			Header: "CLOCK: [2021-01-01 Fri 09:00]--[2021-01-01 Fri 10:30] =>  1:30"},
		{Offset: 80, HeaderOffset: 80, Clock: true,
			Header: "CLOCK: [2021-01-02 Sat 09:00]"},
	}
	res := c.Classify(items)

	if len(res.Clocks) != 2 {
		t.Fatalf("clocks = %d, want 2", len(res.Clocks))
	}
	closed := res.Clocks[0]
	if closed.End == nil {
		t.Fatal("closed clock has nil end")
	}
	if *closed.End-closed.Start != 90*60 {
		t.Errorf("duration = %d seconds", *closed.End-closed.Start)
	}
	if res.Clocks[1].End != nil {
		t.Error("running clock should have nil end")
	}
}

func TestClassify_ClockNoteAssociation(t *testing.T) {
	c := newClassifier(t, nil)
	items := []org.LogbookItem{
		{Offset: 10, HeaderOffset: 10, Clock: true, Header: "CLOCK: [2021-01-01 Fri 09:00]--[2021-01-01 Fri 10:00] =>  1:00"},
		item(90, "got distracted halfway"),
		item(150, "Note taken on [2021-01-01 Fri 11:00]"),
	}
	res := c.Classify(items)

	if len(res.Clocks) != 1 {
		t.Fatalf("clocks = %d, want 1", len(res.Clocks))
	}
	if res.Clocks[0].Note != "got distracted halfway" {
		t.Errorf("clock note = %q", res.Clocks[0].Note)
	}
	// The plain item became the clock's note, not an entry; the real
	// note entry survives.
	if len(res.Entries) != 1 || res.Entries[0].Type != EntryNote {
		t.Errorf("entries = %+v", res.Entries)
	}
}

func TestClassify_PlainItemNotAfterClockStaysEntry(t *testing.T) {
	c := newClassifier(t, nil)
	items := []org.LogbookItem{
		item(10, "Note taken on [2021-01-01 Fri 11:00]"),
		item(60, "a loose remark"),
	}
	res := c.Classify(items)
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}
	if res.Entries[1].Type != EntryNone {
		t.Errorf("type = %q, want none", res.Entries[1].Type)
	}
}

func TestClassify_UserTemplate(t *testing.T) {
	c := newClassifier(t, map[string]string{
		"review": "Reviewed by %u on %t",
	})
	res := c.Classify([]org.LogbookItem{
		item(1, "Reviewed by alice on [2021-05-01 Sat]"),
	})
	if res.Entries[0].Type != "review" {
		t.Errorf("type = %q, want review", res.Entries[0].Type)
	}
	if res.Entries[0].TimeLogged == nil {
		t.Error("time logged not extracted from user template")
	}
}

func TestClassify_UserOverridesBuiltin(t *testing.T) {
	c := newClassifier(t, map[string]string{
		EntryNote: "Jotted down at %t",
	})
	res := c.Classify([]org.LogbookItem{
		item(1, "Jotted down at [2021-05-01 Sat]"),
		item(60, "Note taken on [2021-05-01 Sat]"),
	})
	if res.Entries[0].Type != EntryNote {
		t.Errorf("override: type = %q, want note", res.Entries[0].Type)
	}
	if res.Entries[1].Type != EntryNone {
		t.Errorf("stock header after override: type = %q, want none", res.Entries[1].Type)
	}
}

func TestNewClassifier_BadPlaceholder(t *testing.T) {
	if _, err := NewClassifier(map[string]string{"x": "Broken %q template"}); err == nil {
		t.Error("expected error for unknown placeholder")
	}
}

func TestClassify_SourceOrderPreserved(t *testing.T) {
	c := newClassifier(t, nil)
	items := []org.LogbookItem{
		item(30, "Note taken on [2021-01-03 Sun]"),
		item(10, "Note taken on [2021-01-01 Fri]"),
	}
	res := c.Classify(items)
	if res.Entries[0].Offset != 30 || res.Entries[1].Offset != 10 {
		t.Error("entries reordered; must follow source order")
	}
}
