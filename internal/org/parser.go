package org

import (
	"regexp"
	"strconv"
	"strings"
)

// Options controls parsing that depends on user configuration.
type Options struct {
	TodoKeywords []string // recognized TODO state keywords
	LogDrawer    string   // logbook drawer name; "" disables capture
}

// DefaultOptions mirrors the format's stock configuration.
func DefaultOptions() Options {
	return Options{
		TodoKeywords: []string{"TODO", "DONE"},
		LogDrawer:    "LOGBOOK",
	}
}

var (
	headlineRe = regexp.MustCompile(`^(\*+)[ \t]+(.*)$`)
	priorityRe = regexp.MustCompile(`^\[#([A-Za-z])\][ \t]*`)
	tagsRe     = regexp.MustCompile(`[ \t]+(:(?:[[:alnum:]_@#%]+:)+)[ \t]*$`)
	planningRe = regexp.MustCompile(`(SCHEDULED|DEADLINE|CLOSED):[ \t]*(` + timestampToken + `)`)
	propertyRe = regexp.MustCompile(`^[ \t]*:([^:\s]+):[ \t]*(.*?)[ \t]*$`)
	keywordRe  = regexp.MustCompile(`^#\+([A-Za-z_]+):[ \t]*(.*?)[ \t]*$`)
	linkRe     = regexp.MustCompile(`\[\[([^][]+)\](?:\[([^][]+)\])?\]`)
	effortRe   = regexp.MustCompile(`^(?:(\d+):(\d{2})|(\d+))$`)
)

type line struct {
	text string
	pos  int // 1-based offset of the first byte
}

func splitLines(data []byte) []line {
	var out []line
	pos := 1
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			out = append(out, line{text: string(data[start:i]), pos: pos})
			pos += i - start + 1
			start = i + 1
		}
	}
	return out
}

// Parse builds the document tree for one file. Parsing never fails:
// text that matches no recognized structure stays body content.
func Parse(path string, data []byte, opts Options) *Document {
	doc := &Document{Path: path}
	lines := splitLines(data)

	// File-level region runs until the first headline.
	top := len(lines)
	for i, l := range lines {
		if headlineRe.MatchString(l.text) {
			top = i
			break
		}
	}
	parseFileLevel(doc, lines[:top])

	// Collect headlines flat, then nest by depth.
	var flat []*Headline
	i := top
	for i < len(lines) {
		m := headlineRe.FindStringSubmatch(lines[i].text)
		end := i + 1
		for end < len(lines) && !headlineRe.MatchString(lines[end].text) {
			end++
		}
		h := parseHeadline(lines[i], m, lines[i+1:end], opts)
		flat = append(flat, h)
		i = end
	}

	var stack []*Headline
	for _, h := range flat {
		for len(stack) > 0 && stack[len(stack)-1].Depth >= h.Depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			doc.Headlines = append(doc.Headlines, h)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, h)
		}
		stack = append(stack, h)
	}
	return doc
}

// parseFileLevel handles the pre-headline region: keyword lines and an
// optional file property drawer.
func parseFileLevel(doc *Document, lines []line) {
	i := 0
	for i < len(lines) {
		l := lines[i]
		if kw := keywordRe.FindStringSubmatch(l.text); kw != nil {
			switch strings.ToUpper(kw[1]) {
			case "FILETAGS":
				doc.FileTags = append(doc.FileTags, splitTags(kw[2])...)
			case "PROPERTY":
				key, value, _ := strings.Cut(kw[2], " ")
				doc.Properties = append(doc.Properties, Property{
					Offset: l.pos,
					Key:    key,
					Value:  strings.TrimSpace(value),
				})
			}
			i++
			continue
		}
		if strings.EqualFold(strings.TrimSpace(l.text), ":PROPERTIES:") {
			props, next := parseDrawerProperties(lines, i+1)
			doc.Properties = append(doc.Properties, props...)
			i = next
			continue
		}
		i++
	}
}

// splitTags handles both the :a:b: colon form and plain space
// separation.
func splitTags(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, ":") {
		var out []string
		for _, t := range strings.Split(s, ":") {
			if t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return strings.Fields(s)
}

// parseDrawerProperties reads :KEY: value lines until :END:, returning
// the next line index after the drawer.
func parseDrawerProperties(lines []line, i int) ([]Property, int) {
	var props []Property
	for ; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i].text)
		if strings.EqualFold(t, ":END:") {
			return props, i + 1
		}
		if m := propertyRe.FindStringSubmatch(lines[i].text); m != nil {
			props = append(props, Property{Offset: lines[i].pos, Key: m[1], Value: m[2]})
		}
	}
	return props, i
}

func parseHeadline(hl line, m []string, section []line, opts Options) *Headline {
	h := &Headline{
		Depth:  len(m[1]),
		Offset: hl.pos,
	}

	rest := m[2]
	kw, after, _ := strings.Cut(rest, " ")
	for _, want := range opts.TodoKeywords {
		if kw == want {
			h.Keyword = kw
			rest = strings.TrimLeft(after, " \t")
			break
		}
	}
	if pm := priorityRe.FindStringSubmatch(rest); pm != nil {
		h.Priority = pm[1]
		rest = rest[len(pm[0]):]
	}
	if strings.HasPrefix(rest, "COMMENT ") || rest == "COMMENT" {
		h.Commented = true
		rest = strings.TrimLeft(strings.TrimPrefix(rest, "COMMENT"), " \t")
	}
	if tm := tagsRe.FindStringSubmatch(rest); tm != nil {
		for _, t := range strings.Split(tm[1], ":") {
			if t == "" {
				continue
			}
			if t == "ARCHIVE" {
				h.Archived = true
			}
			h.Tags = append(h.Tags, t)
		}
		rest = rest[:len(rest)-len(tm[0])]
	}
	h.Text = strings.TrimRight(rest, " \t")

	parseSection(h, section, opts)

	for _, p := range h.Properties {
		if p.Key == "Effort" {
			if minutes, ok := parseEffort(p.Value); ok {
				h.Effort = &minutes
			}
		}
	}
	return h
}

// parseSection consumes the lines between a headline and its next
// sibling: planning line, drawers, then body content.
func parseSection(h *Headline, section []line, opts Options) {
	var body []line
	i := 0

	// Planning is only recognized on the line directly below the
	// headline.
	if i < len(section) {
		t := strings.TrimSpace(section[i].text)
		if strings.HasPrefix(t, "SCHEDULED:") || strings.HasPrefix(t, "DEADLINE:") || strings.HasPrefix(t, "CLOSED:") {
			l := section[i]
			for _, pm := range planningRe.FindAllStringSubmatchIndex(l.text, -1) {
				kind := strings.ToLower(l.text[pm[2]:pm[3]])
				raw := l.text[pm[4]:pm[5]]
				if ts, ok := DecodeTimestamp(raw, l.pos+pm[4]); ok {
					h.Planning = append(h.Planning, Planning{Type: kind, Timestamp: ts})
				}
			}
			i++
		}
	}

	for i < len(section) {
		t := strings.TrimSpace(section[i].text)
		switch {
		case strings.EqualFold(t, ":PROPERTIES:"):
			props, next := parseDrawerProperties(section, i+1)
			h.Properties = append(h.Properties, props...)
			i = next
		case opts.LogDrawer != "" && strings.EqualFold(t, ":"+opts.LogDrawer+":"):
			items, next := parseLogbook(section, i+1)
			h.Logbook = append(h.Logbook, items...)
			i = next
		default:
			body = append(body, section[i])
			i++
		}
	}

	var content []string
	for _, l := range body {
		content = append(content, l.text)

		for _, loc := range timestampRe.FindAllStringIndex(l.text, -1) {
			if ts, ok := DecodeTimestamp(l.text[loc[0]:loc[1]], l.pos+loc[0]); ok {
				h.Timestamps = append(h.Timestamps, ts)
			}
		}
		for _, lm := range linkRe.FindAllStringSubmatchIndex(l.text, -1) {
			target := l.text[lm[2]:lm[3]]
			desc := ""
			if lm[4] >= 0 {
				desc = l.text[lm[4]:lm[5]]
			}
			linkType, linkPath := "fuzzy", target
			if before, after, ok := strings.Cut(target, ":"); ok {
				linkType, linkPath = before, after
			}
			h.Links = append(h.Links, Link{
				Offset:      l.pos + lm[0],
				Type:        linkType,
				Path:        linkPath,
				Description: desc,
			})
		}
	}
	h.Content = strings.TrimRight(strings.Join(content, "\n"), "\n")
}

// parseLogbook reads drawer items until :END:. CLOCK lines are their
// own items; list items carry their indented continuation lines as the
// note.
func parseLogbook(lines []line, i int) ([]LogbookItem, int) {
	var items []LogbookItem
	flushNote := func(noteLines []string) {
		if len(items) == 0 || len(noteLines) == 0 {
			return
		}
		items[len(items)-1].Note = strings.Join(noteLines, "\n")
	}
	var note []string
	for ; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i].text)
		indent := strings.Index(lines[i].text, t)
		switch {
		case strings.EqualFold(t, ":END:"):
			flushNote(note)
			return items, i + 1
		case strings.HasPrefix(t, "CLOCK:"):
			flushNote(note)
			note = nil
			items = append(items, LogbookItem{
				Offset:       lines[i].pos + indent,
				HeaderOffset: lines[i].pos + indent,
				Header:       t,
				Clock:        true,
			})
		case strings.HasPrefix(t, "- "):
			flushNote(note)
			note = nil
			items = append(items, LogbookItem{
				Offset:       lines[i].pos + indent,
				HeaderOffset: lines[i].pos + indent + 2,
				Header:       strings.TrimSuffix(t[2:], ` \\`),
			})
		default:
			if t != "" {
				note = append(note, t)
			}
		}
	}
	flushNote(note)
	return items, i
}

func parseEffort(s string) (int, bool) {
	m := effortRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	if m[3] != "" {
		n, _ := strconv.Atoi(m[3])
		return n, true
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes, true
}
