// Package logbook classifies raw logbook drawer items into typed
// records by matching their header lines against configurable message
// templates. Each template compiles to a regular expression once; the
// classifier then tries the compiled matchers in order and stops at the
// first match, which keeps entry kinds data-driven instead of encoding
// one matcher per kind.
package logbook

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jarifuri/org-sql/internal/org"
)

// EntryNone is the fallback type for headers matching no template. The
// note text is still preserved.
const EntryNone = "none"

// Built-in entry-type tags.
const (
	EntryDone        = "done"
	EntryState       = "state"
	EntryNote        = "note"
	EntryReschedule  = "reschedule"
	EntryDelSchedule = "delschedule"
	EntryRedeadline  = "redeadline"
	EntryDelDeadline = "deldeadline"
	EntryRefile      = "refile"
)

// builtinOrder fixes the matching order for the stock templates.
var builtinOrder = []string{
	EntryDone, EntryState, EntryNote,
	EntryReschedule, EntryDelSchedule, EntryRedeadline, EntryDelDeadline,
	EntryRefile,
}

// BuiltinTemplates returns the stock message templates. Placeholders:
// %t/%T inactive/active timestamp, %d/%D inactive/active date-only
// timestamp, %s/%S new/old free text, %u/%U short/full username.
func BuiltinTemplates() map[string]string {
	return map[string]string{
		EntryDone:        "CLOSING NOTE %t",
		EntryState:       "State %s from %S %t",
		EntryNote:        "Note taken on %t",
		EntryReschedule:  "Rescheduled from %S on %t",
		EntryDelSchedule: "Not scheduled, was %S on %t",
		EntryRedeadline:  "New deadline from %S on %t",
		EntryDelDeadline: "Removed deadline, was %S on %t",
		EntryRefile:      "Refiled on %t",
	}
}

// planningChangeTypes lists the tags whose captured old value is a
// timestamp to be re-emitted as a planning-change record.
var planningChangeTypes = map[string]bool{
	EntryReschedule:  true,
	EntryDelSchedule: true,
	EntryRedeadline:  true,
	EntryDelDeadline: true,
}

// Entry is one classified logbook record.
type Entry struct {
	Offset     int
	Type       string
	TimeLogged *int64
	Header     string
	Note       string
	// StateOld/StateNew are set only for state entries.
	StateOld string
	StateNew string
	// OldTimestamp is the timestamp synthesized from the captured old
	// value of reschedule/delschedule/redeadline/deldeadline entries.
	OldTimestamp *org.Timestamp
}

// Clock is one parsed CLOCK line.
type Clock struct {
	Offset int
	Start  int64
	End    *int64 // nil while the clock is still running
	Note   string
}

// Result holds classified records in source order.
type Result struct {
	Entries []Entry
	Clocks  []Clock
}

type matcher struct {
	tag    string
	re     *regexp.Regexp
	groups []byte // placeholder letter per capturing group
}

// Classifier matches logbook items against a compiled template set.
type Classifier struct {
	matchers []matcher
}

var clockRe = regexp.MustCompile(
	`^CLOCK:[ \t]+(` + org.PatternInactive + `)(?:--(` + org.PatternInactive + `))?(?:[ \t]+=>[ \t]+\d+:\d{2})?[ \t]*$`)

// NewClassifier compiles the built-in templates plus any user
// overrides or additions. User templates for a built-in tag replace the
// stock template in place; new tags are tried after the built-ins, in
// sorted order for determinism.
func NewClassifier(user map[string]string) (*Classifier, error) {
	templates := BuiltinTemplates()
	order := append([]string(nil), builtinOrder...)

	var extra []string
	for tag, tmpl := range user {
		if _, ok := templates[tag]; !ok {
			extra = append(extra, tag)
		}
		templates[tag] = tmpl
	}
	sort.Strings(extra)
	order = append(order, extra...)

	c := &Classifier{}
	for _, tag := range order {
		m, err := compileTemplate(tag, templates[tag])
		if err != nil {
			return nil, err
		}
		c.matchers = append(c.matchers, m)
	}
	return c, nil
}

// compileTemplate escapes literal text and substitutes each placeholder
// with a capturing group of the matching shape.
func compileTemplate(tag, tmpl string) (matcher, error) {
	var pattern strings.Builder
	var groups []byte
	pattern.WriteString(`^`)

	lit := func(s string) { pattern.WriteString(regexp.QuoteMeta(s)) }

	for len(tmpl) > 0 {
		i := strings.IndexByte(tmpl, '%')
		if i < 0 || i == len(tmpl)-1 {
			lit(tmpl)
			break
		}
		lit(tmpl[:i])
		ph := tmpl[i+1]
		switch ph {
		case 't':
			pattern.WriteString(`(` + org.PatternInactive + `)`)
		case 'T':
			pattern.WriteString(`(` + org.PatternActive + `)`)
		case 'd':
			pattern.WriteString(`(` + org.PatternInactiveDate + `)`)
		case 'D':
			pattern.WriteString(`(` + org.PatternActiveDate + `)`)
		case 's', 'S', 'U':
			pattern.WriteString(`(.*?)`)
		case 'u':
			pattern.WriteString(`(\S+)`)
		case '%':
			lit("%")
			tmpl = tmpl[i+2:]
			continue
		default:
			return matcher{}, fmt.Errorf("logbook: template %q: unknown placeholder %%%c", tag, ph)
		}
		groups = append(groups, ph)
		tmpl = tmpl[i+2:]
	}
	pattern.WriteString(`$`)

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return matcher{}, fmt.Errorf("logbook: template %q: %w", tag, err)
	}
	return matcher{tag: tag, re: re, groups: groups}, nil
}

// Classify walks items in source order, producing typed entries and
// clocks. A plain list item directly after a clock line that matches no
// template becomes that clock's note rather than an entry of its own.
func (c *Classifier) Classify(items []org.LogbookItem) Result {
	var res Result
	lastWasClock := false

	for _, item := range items {
		if item.Clock {
			clock, ok := parseClock(item)
			if ok {
				res.Clocks = append(res.Clocks, clock)
			}
			lastWasClock = ok
			continue
		}

		entry, matched := c.classifyItem(item)
		if !matched && lastWasClock {
			clock := &res.Clocks[len(res.Clocks)-1]
			note := item.Header
			if item.Note != "" {
				note += "\n" + item.Note
			}
			if clock.Note == "" {
				clock.Note = note
			} else {
				clock.Note += "\n" + note
			}
			lastWasClock = false
			continue
		}
		lastWasClock = false
		res.Entries = append(res.Entries, entry)
	}
	return res
}

// classifyItem tries every matcher in order; matched reports whether
// any template applied (a "none" entry is returned otherwise).
func (c *Classifier) classifyItem(item org.LogbookItem) (Entry, bool) {
	for _, m := range c.matchers {
		idx := m.re.FindStringSubmatchIndex(item.Header)
		if idx == nil {
			continue
		}
		entry := Entry{
			Offset: item.Offset,
			Type:   m.tag,
			Header: item.Header,
			Note:   item.Note,
		}
		for gi, ph := range m.groups {
			start, end := idx[2*(gi+1)], idx[2*(gi+1)+1]
			if start < 0 {
				continue
			}
			text := item.Header[start:end]
			switch ph {
			case 't', 'T', 'd', 'D':
				if entry.TimeLogged != nil {
					break
				}
				if ts, ok := org.DecodeTimestamp(text, item.HeaderOffset+start); ok {
					logged := ts.Start
					entry.TimeLogged = &logged
				}
			case 's':
				if m.tag == EntryState {
					entry.StateNew = unquote(text)
				}
			case 'S':
				switch {
				case m.tag == EntryState:
					entry.StateOld = unquote(text)
				case planningChangeTypes[m.tag]:
					raw := unquote(text)
					// The old timestamp keeps the position of its
					// capture so its synthesized row gets a distinct,
					// stable offset.
					if ts, ok := org.DecodeTimestamp(raw, item.HeaderOffset+start); ok {
						entry.OldTimestamp = &ts
					}
				}
			}
		}
		return entry, true
	}

	return Entry{
		Offset: item.Offset,
		Type:   EntryNone,
		Header: item.Header,
		Note:   item.Note,
	}, false
}

func parseClock(item org.LogbookItem) (Clock, bool) {
	m := clockRe.FindStringSubmatch(item.Header)
	if m == nil {
		return Clock{}, false
	}
	start, ok := org.DecodeTimestamp(m[1], item.Offset)
	if !ok {
		return Clock{}, false
	}
	clock := Clock{Offset: item.Offset, Start: start.Start, Note: item.Note}
	if m[2] != "" {
		if end, ok := org.DecodeTimestamp(m[2], item.Offset); ok {
			clock.End = &end.Start
		}
	}
	return clock, true
}

// unquote trims surrounding whitespace and one layer of double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
