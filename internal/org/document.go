// Package org parses outline documents into a tree the mapper can walk.
// Offsets throughout are 1-based byte positions into the source text,
// matching the buffer-position convention of the format's editor; they
// are the stable per-file keys the relational layer joins on.
package org

// Property is one :KEY: value line from a property drawer or a
// file-level #+PROPERTY keyword.
type Property struct {
	Offset int
	Key    string
	Value  string
}

// Modifier is a decoded repeater or warning suffix on a timestamp.
type Modifier struct {
	Type  string // repeater: cumulate|catch-up|restart; warning: all|first
	Value int
	Unit  string // hour|day|week|month|year
}

// Timestamp is one decoded timestamp token.
type Timestamp struct {
	Offset      int
	Raw         string
	Active      bool
	Start       int64  // epoch seconds, UTC
	End         *int64 // nil for non-ranged timestamps
	StartIsLong bool   // a time-of-day component is present
	EndIsLong   bool
	Warning     *Modifier
	Repeater    *Modifier
}

// Planning is one SCHEDULED/DEADLINE/CLOSED entry on a planning line.
type Planning struct {
	Type      string // scheduled|deadline|closed
	Timestamp Timestamp
}

// Link is one bracketed link found in body content.
type Link struct {
	Offset      int
	Type        string // scheme, or "fuzzy" for schemeless targets
	Path        string
	Description string // empty when absent
}

// LogbookItem is one raw item from the logbook drawer, in source
// order. Classification into typed entries happens in the logbook
// package.
type LogbookItem struct {
	Offset       int
	HeaderOffset int    // position where Header text starts (past any bullet)
	Header       string // first line of the item, or the whole CLOCK line
	Clock        bool   // the item is a CLOCK line, not a list item
	Note         string // continuation lines below the header, "" when none
}

// Headline is one heading and its section content.
type Headline struct {
	Depth      int // number of leading stars
	Offset     int
	Text       string
	Keyword    string // "" when no TODO keyword
	Priority   string // "" when no [#X] cookie
	Tags       []string
	Archived   bool
	Commented  bool
	Effort     *int // minutes, from the Effort property
	Properties []Property
	Planning   []Planning
	Logbook    []LogbookItem
	Timestamps []Timestamp // timestamps embedded in body content
	Links      []Link
	Content    string // body text remaining after drawers and planning
	Children   []*Headline
}

// Document is one parsed outline file.
type Document struct {
	Path       string
	FileTags   []string
	Properties []Property // file-level properties (top drawer + keywords)
	Headlines  []*Headline
}

// Walk visits every headline depth-first in source order.
func (d *Document) Walk(visit func(h *Headline, ancestors []*Headline)) {
	var rec func(h *Headline, ancestors []*Headline)
	rec = func(h *Headline, ancestors []*Headline) {
		visit(h, ancestors)
		ancestors = append(ancestors, h)
		for _, c := range h.Children {
			rec(c, ancestors)
		}
	}
	for _, h := range d.Headlines {
		rec(h, nil)
	}
}
