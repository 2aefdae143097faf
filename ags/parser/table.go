// Package parser tokenizes AGS 4 text into groups of headings, units and data rows.
//
// An AGS file is a sequence of double-quoted, comma-separated lines. The first field of each
// line is a discriminator:
//
//	"GROUP","LOCA"
//	"HEADING","LOCA_ID","LOCA_NATE","LOCA_NATN"
//	"UNIT","","m","m"
//	"TYPE","ID","2DP","2DP"
//	"DATA","BH1","523145.20","178432.10"
//
// The tokenizer is a best-effort accumulator: it never fails on malformed input, it records
// ingestion issues and keeps going.
package parser

// Row maps a heading to its raw string value. Every row of a group carries the full heading
// set of that group; column order is Group.Headings.
type Row map[string]string

// Group is one AGS group: its headings in column order, the declared unit and type per
// heading, and its data rows in file order.
type Group struct {
	Key      string
	Headings []string
	Units    map[string]string // heading -> unit; headings beyond a short UNIT line are absent
	Types    map[string]string // heading -> AGS data type (ID, 2DP, DT, ...)
	Rows     []Row
	Lines    []int // physical line of each row, parallel to Rows
	Line     int   // physical line of the GROUP record
}

// Unit returns the declared unit of a heading and whether one was declared at all.
func (g *Group) Unit(heading string) (string, bool) {
	unit, ok := g.Units[heading]
	return unit, ok
}

// HasHeading reports whether the group declares the heading.
func (g *Group) HasHeading(heading string) bool {
	for _, h := range g.Headings {
		if h == heading {
			return true
		}
	}
	return false
}

// RawTable holds the groups of one AGS file keyed by group name. Only groups with a HEADING
// and at least one DATA row are present.
type RawTable struct {
	groups    map[string]*Group
	order     []string
	LinesRead int
}

// NewRawTable builds a table from already-assembled groups, in the given order.
// Groups without headings or rows are left out, matching Tokenize.
func NewRawTable(groups ...*Group) *RawTable {
	t := &RawTable{groups: make(map[string]*Group)}
	for _, g := range groups {
		if g == nil || len(g.Headings) == 0 || len(g.Rows) == 0 {
			continue
		}
		if _, dup := t.groups[g.Key]; dup {
			continue
		}
		if g.Units == nil {
			g.Units = map[string]string{}
		}
		t.groups[g.Key] = g
		t.order = append(t.order, g.Key)
	}
	return t
}

// Group returns the named group.
func (t *RawTable) Group(key string) (*Group, bool) {
	if t == nil {
		return nil, false
	}
	g, ok := t.groups[key]
	return g, ok
}

// Keys returns the group keys in file order.
func (t *RawTable) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of groups.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// RowCount returns the total number of DATA rows across groups.
func (t *RawTable) RowCount() int {
	n := 0
	for _, key := range t.Keys() {
		n += len(t.groups[key].Rows)
	}
	return n
}

// Units returns the parallel group -> heading -> unit view of the table.
func (t *RawTable) Units() map[string]map[string]string {
	out := make(map[string]map[string]string, t.Len())
	for _, key := range t.Keys() {
		out[key] = t.groups[key].Units
	}
	return out
}
