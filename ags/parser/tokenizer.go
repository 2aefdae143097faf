package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/teranos/qntx-ags/ags/ingestion"
	"github.com/teranos/qntx-ags/errors"
)

// Line discriminators.
const (
	KindGroup   = "GROUP"
	KindHeading = "HEADING"
	KindUnit    = "UNIT"
	KindType    = "TYPE"
	KindData    = "DATA"
)

// fieldSeparator separates double-quoted fields. A comma inside a quoted field is not
// surrounded by quotes and therefore never splits.
const fieldSeparator = `","`

const stage = "tokenize"

// maxLineSize bounds a single AGS record read by TokenizeReader.
const maxLineSize = 4 * 1024 * 1024

// Tokenize splits AGS lines into a RawTable. It never fails; problems are returned as issues.
func Tokenize(lines []string) (*RawTable, []ingestion.Issue) {
	tk := &tokenizer{
		groups: make(map[string]*Group),
	}
	for i, line := range lines {
		tk.line(i+1, line)
	}
	return tk.finish(len(lines))
}

// TokenizeReader reads every line from r and tokenizes them. The only error returned is a
// read failure from r.
func TokenizeReader(r io.Reader) (*RawTable, []ingestion.Issue, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "read AGS content")
	}
	table, issues := Tokenize(lines)
	return table, issues, nil
}

// SplitRecord splits one AGS line into its unquoted fields.
// Returns nil for blank lines.
func SplitRecord(line string) []string {
	line = strings.TrimRight(line, " \t\r\n")
	line = strings.TrimPrefix(line, "\ufeff")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	tokens := strings.Split(line, fieldSeparator)
	for i, tok := range tokens {
		if i == 0 {
			tok = strings.TrimPrefix(strings.TrimLeft(tok, " \t"), `"`)
		}
		if i == len(tokens)-1 {
			tok = strings.TrimSuffix(tok, `"`)
		}
		tokens[i] = unquote(tok)
	}
	return tokens
}

// unquote collapses AGS escaped quotes ("") and removes any stray quote left by a malformed
// record.
func unquote(tok string) string {
	if !strings.Contains(tok, `"`) {
		return tok
	}
	const placeholder = "\x00"
	tok = strings.ReplaceAll(tok, `""`, placeholder)
	tok = strings.ReplaceAll(tok, `"`, "")
	return strings.ReplaceAll(tok, placeholder, `"`)
}

type tokenizer struct {
	groups  map[string]*Group
	order   []string
	current *Group // group receiving HEADING/UNIT/TYPE/DATA; nil when the block is skipped
	// reopened is set when a repeated GROUP key is being merged into an existing group
	reopened bool
	skipping string // key of a block being skipped
	issues   []ingestion.Issue
}

func (tk *tokenizer) line(n int, raw string) {
	tokens := SplitRecord(raw)
	if len(tokens) == 0 {
		return
	}

	kind := strings.ToUpper(strings.TrimSpace(tokens[0]))
	fields := tokens[1:]

	switch kind {
	case KindGroup:
		tk.startGroup(n, fields)
	case KindHeading:
		tk.heading(n, fields)
	case KindUnit:
		if g := tk.target(n, kind); g != nil {
			tk.zip(n, g, kind, fields, g.Units)
		}
	case KindType:
		if g := tk.target(n, kind); g != nil {
			tk.zip(n, g, kind, fields, g.Types)
		}
	case KindData:
		tk.data(n, fields)
	default:
		tk.report(ingestion.SeverityInfo, n, "", fmt.Sprintf("unrecognised line type %q ignored", tokens[0]))
	}
}

func (tk *tokenizer) startGroup(n int, fields []string) {
	tk.current = nil
	tk.reopened = false
	tk.skipping = ""

	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		tk.report(ingestion.SeverityWarning, n, "", "GROUP record without a group name; block ignored")
		tk.skipping = "?"
		return
	}
	key := strings.TrimSpace(fields[0])

	if _, exists := tk.groups[key]; exists {
		// Merged when the repeated block declares identical headings (see heading).
		tk.current = &Group{Key: key, Line: n}
		tk.reopened = true
		return
	}

	g := &Group{
		Key:   key,
		Units: make(map[string]string),
		Types: make(map[string]string),
		Line:  n,
	}
	tk.groups[key] = g
	tk.order = append(tk.order, key)
	tk.current = g
}

func (tk *tokenizer) heading(n int, fields []string) {
	g := tk.target(n, KindHeading)
	if g == nil {
		return
	}

	if tk.reopened {
		existing := tk.groups[g.Key]
		if equalHeadings(existing.Headings, fields) {
			tk.current = existing
			tk.reopened = false
			tk.report(ingestion.SeverityWarning, n, g.Key, "group repeated; rows appended to the first block")
			return
		}
		tk.report(ingestion.SeverityWarning, n, g.Key, "group repeated with different headings; block ignored")
		tk.current = nil
		tk.skipping = g.Key
		return
	}

	if len(g.Headings) > 0 {
		tk.report(ingestion.SeverityWarning, n, g.Key, "second HEADING record in group ignored")
		return
	}

	seen := make(map[string]bool, len(fields))
	for _, h := range fields {
		h = strings.TrimSpace(h)
		if seen[h] {
			tk.report(ingestion.SeverityWarning, n, g.Key, fmt.Sprintf("duplicate heading %q; first column kept", h))
		}
		seen[h] = true
		g.Headings = append(g.Headings, h)
	}
}

func (tk *tokenizer) data(n int, fields []string) {
	g := tk.target(n, KindData)
	if g == nil {
		return
	}
	if len(g.Headings) == 0 {
		tk.report(ingestion.SeverityWarning, n, g.Key, "DATA record before HEADING ignored")
		return
	}

	switch {
	case len(fields) < len(g.Headings):
		tk.report(ingestion.SeverityWarning, n, g.Key,
			fmt.Sprintf("DATA record has %d values for %d headings; missing values left empty", len(fields), len(g.Headings)))
	case len(fields) > len(g.Headings):
		tk.report(ingestion.SeverityWarning, n, g.Key,
			fmt.Sprintf("DATA record has %d values for %d headings; extra values dropped", len(fields), len(g.Headings)))
	}

	row := make(Row, len(g.Headings))
	for i, h := range g.Headings {
		if _, dup := row[h]; dup {
			continue
		}
		if i < len(fields) {
			row[h] = fields[i]
		} else {
			row[h] = ""
		}
	}
	g.Rows = append(g.Rows, row)
	g.Lines = append(g.Lines, n)
}

// zip pairs UNIT/TYPE values positionally with the group's headings.
func (tk *tokenizer) zip(n int, g *Group, kind string, fields []string, into map[string]string) {
	if len(g.Headings) == 0 {
		tk.report(ingestion.SeverityWarning, n, g.Key, kind+" record before HEADING ignored")
		return
	}
	if len(fields) < len(g.Headings) {
		tk.report(ingestion.SeverityWarning, n, g.Key,
			fmt.Sprintf("%s record has %d values for %d headings", kind, len(fields), len(g.Headings)))
	}
	for i, h := range g.Headings {
		if i >= len(fields) {
			break
		}
		if _, set := into[h]; !set {
			into[h] = strings.TrimSpace(fields[i])
		}
	}
}

// target returns the group a HEADING/UNIT/TYPE/DATA record applies to, or nil when the record
// must be dropped.
func (tk *tokenizer) target(n int, kind string) *Group {
	if tk.current != nil {
		if tk.reopened && kind != KindHeading {
			tk.report(ingestion.SeverityWarning, n, tk.current.Key, kind+" record in repeated group before its HEADING ignored")
			return nil
		}
		return tk.current
	}
	if tk.skipping != "" {
		return nil
	}
	tk.report(ingestion.SeverityWarning, n, "", kind+" record outside any GROUP ignored")
	return nil
}

func (tk *tokenizer) finish(linesRead int) (*RawTable, []ingestion.Issue) {
	table := &RawTable{groups: make(map[string]*Group), LinesRead: linesRead}
	for _, key := range tk.order {
		g := tk.groups[key]
		switch {
		case len(g.Headings) == 0:
			tk.reportGroup(g, "group has no HEADING record; group dropped")
			continue
		case len(g.Rows) == 0:
			tk.reportGroup(g, "group has no DATA records; group dropped")
			continue
		}
		table.groups[key] = g
		table.order = append(table.order, key)
	}
	return table, tk.issues
}

func (tk *tokenizer) reportGroup(g *Group, msg string) {
	tk.issues = append(tk.issues, ingestion.Issue{
		Stage:    stage,
		Code:     ingestion.CodeStructural,
		Severity: ingestion.SeverityWarning,
		Message:  msg,
		Group:    g.Key,
		Line:     g.Line,
	})
}

func (tk *tokenizer) report(severity ingestion.Severity, line int, group, msg string) {
	tk.issues = append(tk.issues, ingestion.Issue{
		Stage:    stage,
		Code:     ingestion.CodeTokenizer,
		Severity: severity,
		Message:  msg,
		Group:    group,
		Line:     line,
	})
}

func equalHeadings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}
