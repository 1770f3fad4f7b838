package org

import (
	"strings"
	"testing"
)

func parseStr(t *testing.T, s string) *Document {
	t.Helper()
	return Parse("test.org", []byte(s), DefaultOptions())
}

func TestParse_SingleHeadline(t *testing.T) {
	doc := parseStr(t, "* headline")
	if len(doc.Headlines) != 1 {
		t.Fatalf("headlines = %d, want 1", len(doc.Headlines))
	}
	h := doc.Headlines[0]
	if h.Offset != 1 {
		t.Errorf("offset = %d, want 1", h.Offset)
	}
	if h.Text != "headline" {
		t.Errorf("text = %q", h.Text)
	}
	if h.Keyword != "" || h.Priority != "" {
		t.Errorf("keyword/priority = %q/%q, want empty", h.Keyword, h.Priority)
	}
	if h.Depth != 1 {
		t.Errorf("depth = %d, want 1", h.Depth)
	}
}

func TestParse_Nesting(t *testing.T) {
	doc := parseStr(t, "* parent\n** child\n*** grandchild\n** sibling\n* uncle")
	if len(doc.Headlines) != 2 {
		t.Fatalf("top-level = %d, want 2", len(doc.Headlines))
	}
	parent := doc.Headlines[0]
	if len(parent.Children) != 2 {
		t.Fatalf("parent children = %d, want 2", len(parent.Children))
	}
	if len(parent.Children[0].Children) != 1 {
		t.Errorf("grandchildren = %d, want 1", len(parent.Children[0].Children))
	}
	// "* parent\n" is 9 bytes, so the child's stars start at position 10.
	if got := parent.Children[0].Offset; got != 10 {
		t.Errorf("child offset = %d, want 10", got)
	}
}

func TestParse_TitleLine(t *testing.T) {
	doc := parseStr(t, "* TODO [#A] COMMENT fix the thing :work:ARCHIVE:")
	h := doc.Headlines[0]
	if h.Keyword != "TODO" {
		t.Errorf("keyword = %q", h.Keyword)
	}
	if h.Priority != "A" {
		t.Errorf("priority = %q", h.Priority)
	}
	if !h.Commented {
		t.Error("expected commented")
	}
	if !h.Archived {
		t.Error("expected archived (ARCHIVE tag)")
	}
	if h.Text != "fix the thing" {
		t.Errorf("text = %q", h.Text)
	}
	if len(h.Tags) != 2 || h.Tags[0] != "work" || h.Tags[1] != "ARCHIVE" {
		t.Errorf("tags = %v", h.Tags)
	}
}

func TestParse_UnknownKeywordStaysInTitle(t *testing.T) {
	doc := parseStr(t, "* WAITING on someone")
	if doc.Headlines[0].Keyword != "" {
		t.Errorf("keyword = %q, want empty", doc.Headlines[0].Keyword)
	}
	if doc.Headlines[0].Text != "WAITING on someone" {
		t.Errorf("text = %q", doc.Headlines[0].Text)
	}
}

func TestParse_Planning(t *testing.T) {
	doc := parseStr(t, "* task\nSCHEDULED: <2021-01-04 Mon> DEADLINE: <2021-01-08 Fri -2d>\nbody")
	h := doc.Headlines[0]
	if len(h.Planning) != 2 {
		t.Fatalf("planning = %d, want 2", len(h.Planning))
	}
	if h.Planning[0].Type != "scheduled" || h.Planning[1].Type != "deadline" {
		t.Errorf("types = %s, %s", h.Planning[0].Type, h.Planning[1].Type)
	}
	if h.Planning[1].Timestamp.Warning == nil {
		t.Error("deadline warning not decoded")
	}
	// The planning line is not body content.
	if strings.Contains(h.Content, "SCHEDULED") {
		t.Errorf("planning leaked into content: %q", h.Content)
	}
	if h.Content != "body" {
		t.Errorf("content = %q", h.Content)
	}
}

func TestParse_PropertiesAndEffort(t *testing.T) {
	doc := parseStr(t, "* task\n:PROPERTIES:\n:Effort: 1:30\n:Owner: alice\n:END:\n")
	h := doc.Headlines[0]
	if len(h.Properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(h.Properties))
	}
	if h.Properties[0].Key != "Effort" || h.Properties[1].Value != "alice" {
		t.Errorf("properties = %+v", h.Properties)
	}
	if h.Effort == nil || *h.Effort != 90 {
		t.Errorf("effort = %v, want 90", h.Effort)
	}
}

func TestParse_EffortPlainMinutes(t *testing.T) {
	doc := parseStr(t, "* task\n:PROPERTIES:\n:Effort: 45\n:END:\n")
	h := doc.Headlines[0]
	if h.Effort == nil || *h.Effort != 45 {
		t.Errorf("effort = %v, want 45", h.Effort)
	}
}

func TestParse_BodyTimestampsAndLinks(t *testing.T) {
	src := "* task\nsee [[https://example.com][the site]] and [[Some Note]]\nmeeting <2021-02-01 Mon 10:00>\n"
	doc := parseStr(t, src)
	h := doc.Headlines[0]

	if len(h.Links) != 2 {
		t.Fatalf("links = %d, want 2", len(h.Links))
	}
	if h.Links[0].Type != "https" || h.Links[0].Path != "//example.com" || h.Links[0].Description != "the site" {
		t.Errorf("link = %+v", h.Links[0])
	}
	if h.Links[1].Type != "fuzzy" || h.Links[1].Path != "Some Note" || h.Links[1].Description != "" {
		t.Errorf("link = %+v", h.Links[1])
	}
	if got, want := h.Links[0].Offset, strings.Index(src, "[[https")+1; got != want {
		t.Errorf("link offset = %d, want %d", got, want)
	}

	if len(h.Timestamps) != 1 {
		t.Fatalf("timestamps = %d, want 1", len(h.Timestamps))
	}
	if got, want := h.Timestamps[0].Offset, strings.Index(src, "<2021")+1; got != want {
		t.Errorf("timestamp offset = %d, want %d", got, want)
	}
}

func TestParse_Logbook(t *testing.T) {
	src := strings.Join([]string{
		"* task",
		":LOGBOOK:",
		`- Note taken on [2021-01-01 Fri 10:00] \\`,
		"  remember this",
		"CLOCK: [2021-01-01 Fri 09:00]--[2021-01-01 Fri 10:00] =>  1:00",
		"- stopped early",
		":END:",
		"body",
	}, "\n")
	doc := parseStr(t, src)
	h := doc.Headlines[0]

	if len(h.Logbook) != 3 {
		t.Fatalf("logbook items = %d, want 3", len(h.Logbook))
	}
	if h.Logbook[0].Clock {
		t.Error("note item flagged as clock")
	}
	if h.Logbook[0].Header != "Note taken on [2021-01-01 Fri 10:00]" {
		t.Errorf("header = %q", h.Logbook[0].Header)
	}
	if h.Logbook[0].Note != "remember this" {
		t.Errorf("note = %q", h.Logbook[0].Note)
	}
	if !h.Logbook[1].Clock {
		t.Error("clock item not flagged")
	}
	if h.Logbook[2].Header != "stopped early" {
		t.Errorf("trailing item header = %q", h.Logbook[2].Header)
	}
	if h.Content != "body" {
		t.Errorf("content = %q", h.Content)
	}
}

func TestParse_FileLevel(t *testing.T) {
	src := strings.Join([]string{
		"#+FILETAGS: :project:home:",
		"#+PROPERTY: Owner bob",
		":PROPERTIES:",
		":Version: 3",
		":END:",
		"* first",
	}, "\n")
	doc := parseStr(t, src)

	if len(doc.FileTags) != 2 || doc.FileTags[0] != "project" || doc.FileTags[1] != "home" {
		t.Errorf("file tags = %v", doc.FileTags)
	}
	if len(doc.Properties) != 2 {
		t.Fatalf("file properties = %d, want 2", len(doc.Properties))
	}
	if doc.Properties[0].Key != "Owner" || doc.Properties[0].Value != "bob" {
		t.Errorf("keyword property = %+v", doc.Properties[0])
	}
	if doc.Properties[1].Key != "Version" || doc.Properties[1].Value != "3" {
		t.Errorf("drawer property = %+v", doc.Properties[1])
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	doc := parseStr(t, "")
	if len(doc.Headlines) != 0 {
		t.Errorf("headlines = %d, want 0", len(doc.Headlines))
	}
}

func TestWalk_Order(t *testing.T) {
	doc := parseStr(t, "* a\n** b\n*** c\n* d")
	var texts []string
	var depths []int
	doc.Walk(func(h *Headline, ancestors []*Headline) {
		texts = append(texts, h.Text)
		depths = append(depths, len(ancestors))
	})
	if strings.Join(texts, "") != "abcd" {
		t.Errorf("visit order = %v", texts)
	}
	want := []int{0, 1, 2, 0}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("ancestors[%d] = %d, want %d", i, depths[i], want[i])
		}
	}
}
