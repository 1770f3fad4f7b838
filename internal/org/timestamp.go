package org

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pattern fragments for one bracketed timestamp token. The logbook
// package embeds these when compiling message templates.
const (
	PatternActive       = `<\d{4}-\d{2}-\d{2}[^>\n]*>`
	PatternInactive     = `\[\d{4}-\d{2}-\d{2}[^\]\n]*\]`
	PatternActiveDate   = `<\d{4}-\d{2}-\d{2}(?: [^\s0-9+\-.>][^\s>]*)?>`
	PatternInactiveDate = `\[\d{4}-\d{2}-\d{2}(?: [^\s0-9+\-.\]][^\s\]]*)?\]`
)

// timestampToken matches one timestamp token in running text,
// including the two-token range form <a>--<b>.
const timestampToken = `[<\[]\d{4}-\d{2}-\d{2}[^>\]\n]*[>\]](?:--[<\[]\d{4}-\d{2}-\d{2}[^>\]\n]*[>\]])?`

var timestampRe = regexp.MustCompile(timestampToken)

var (
	// inner grammar of one bracket: date, optional day name, optional
	// time of day (possibly a time range), optional trailing modifiers.
	innerRe = regexp.MustCompile(
		`^(\d{4})-(\d{2})-(\d{2})(?:\s+([^\s0-9+\-.]\S*))?(?:\s+(\d{1,2}):(\d{2})(?:-(\d{1,2}):(\d{2}))?)?\s*(.*)$`)

	modifierRe = regexp.MustCompile(`^(\.\+|\+\+|\+|--|-)(\d+)([hdwmy])$`)
)

var unitNames = map[string]string{
	"h": "hour", "d": "day", "w": "week", "m": "month", "y": "year",
}

// decodedPart is one bracket of a (possibly ranged) timestamp.
type decodedPart struct {
	start    int64
	end      *int64 // set for the H:MM-H:MM intra-bracket range form
	long     bool
	warning  *Modifier
	repeater *Modifier
}

// DecodeTimestamp parses one timestamp token into structured fields.
// ok is false only when the date itself is unparseable; malformed
// repeater/warning suffixes are dropped rather than failing the token.
func DecodeTimestamp(raw string, offset int) (Timestamp, bool) {
	first := raw
	var second string
	if i := rangeSplit(raw); i > 0 {
		first, second = raw[:i], raw[i+2:]
	}

	p, ok := decodePart(first)
	if !ok {
		return Timestamp{}, false
	}

	ts := Timestamp{
		Offset:      offset,
		Raw:         raw,
		Active:      raw[0] == '<',
		Start:       p.start,
		End:         p.end,
		StartIsLong: p.long,
		EndIsLong:   p.end != nil, // intra-bracket ranges always carry a time
		Warning:     p.warning,
		Repeater:    p.repeater,
	}

	if second != "" {
		if q, ok := decodePart(second); ok {
			ts.End = &q.start
			ts.EndIsLong = q.long
			if ts.Warning == nil {
				ts.Warning = q.warning
			}
			if ts.Repeater == nil {
				ts.Repeater = q.repeater
			}
		}
	}
	return ts, true
}

// rangeSplit returns the index of the "--" separating a two-token
// range, or -1.
func rangeSplit(raw string) int {
	for i := 1; i+1 < len(raw); i++ {
		if raw[i] == '-' && raw[i+1] == '-' && (raw[i-1] == '>' || raw[i-1] == ']') {
			return i
		}
	}
	return -1
}

func decodePart(tok string) (decodedPart, bool) {
	if len(tok) < 2 {
		return decodedPart{}, false
	}
	inner := tok[1 : len(tok)-1]
	m := innerRe.FindStringSubmatch(inner)
	if m == nil {
		return decodedPart{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	var p decodedPart
	hour, minute := 0, 0
	if m[5] != "" {
		hour, _ = strconv.Atoi(m[5])
		minute, _ = strconv.Atoi(m[6])
		p.long = true
	}
	p.start = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC).Unix()

	if m[7] != "" {
		endHour, _ := strconv.Atoi(m[7])
		endMinute, _ := strconv.Atoi(m[8])
		end := time.Date(year, time.Month(month), day, endHour, endMinute, 0, 0, time.UTC).Unix()
		p.end = &end
	}

	for _, f := range strings.Fields(m[9]) {
		mod := modifierRe.FindStringSubmatch(f)
		if mod == nil {
			continue // tolerate malformed suffixes
		}
		value, _ := strconv.Atoi(mod[2])
		unit := unitNames[mod[3]]
		switch mod[1] {
		case "+":
			p.repeater = &Modifier{Type: "cumulate", Value: value, Unit: unit}
		case "++":
			p.repeater = &Modifier{Type: "catch-up", Value: value, Unit: unit}
		case ".+":
			p.repeater = &Modifier{Type: "restart", Value: value, Unit: unit}
		case "-":
			p.warning = &Modifier{Type: "all", Value: value, Unit: unit}
		case "--":
			p.warning = &Modifier{Type: "first", Value: value, Unit: unit}
		}
	}
	return p, true
}
