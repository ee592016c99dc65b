// Package infrastructure contains the concrete implementations of the
// interfaces the domain/interfaces packages declare: the source manager,
// diagnostics renderer, symbol table, memory manager, and LLVM backend.
package infrastructure

import (
	"sort"
	"strings"
)

// DefaultSourceFile implements domain.SourceFile. It precomputes
// lineOffsets so any absolute byte offset resolves to (line, column) in
// O(log n) and any (line, column) maps back in O(1) (spec §4.A).
//
// Grounded on original_source/include/source_manager.h's SourceFile
// (lines, lineOffsets, getLineNumber/getColumnInLine/getAbsoluteOffset)
// and on Consensys-go-corset/pkg/util/source/source_file.go's File/Line
// model, adapted to the O(log n) binary search spec.md requires.
type DefaultSourceFile struct {
	filename    string
	content     string
	lines       []string // CR stripped, raw (not tab-expanded)
	lineOffsets []int    // byte offset of the start of each line
}

func newSourceFile(filename, content string) *DefaultSourceFile {
	f := &DefaultSourceFile{filename: filename, content: content}
	f.splitLines()
	return f
}

func (f *DefaultSourceFile) splitLines() {
	offset := 0
	start := 0
	for offset < len(f.content) {
		if f.content[offset] == '\n' {
			line := f.content[start:offset]
			line = strings.TrimSuffix(line, "\r")
			f.lines = append(f.lines, line)
			f.lineOffsets = append(f.lineOffsets, start)
			offset++
			start = offset
			continue
		}
		offset++
	}
	// trailing partial line (no final newline)
	f.lines = append(f.lines, strings.TrimSuffix(f.content[start:], "\r"))
	f.lineOffsets = append(f.lineOffsets, start)
}

func (f *DefaultSourceFile) Filename() string { return f.filename }
func (f *DefaultSourceFile) Content() string  { return f.content }
func (f *DefaultSourceFile) LineCount() int   { return len(f.lines) }

// Line returns the (1-based) line's raw text, or "" if out of range.
func (f *DefaultSourceFile) Line(lineNumber int) string {
	idx := lineNumber - 1
	if idx < 0 || idx >= len(f.lines) {
		return ""
	}
	return f.lines[idx]
}

// LineAndColumn resolves a byte offset to (line, column) via binary
// search over lineOffsets — O(log n) per spec §4.A.
func (f *DefaultSourceFile) LineAndColumn(offset int) (line, column int) {
	if len(f.lineOffsets) == 0 {
		return 1, 1
	}
	// last index i such that lineOffsets[i] <= offset
	i := sort.Search(len(f.lineOffsets), func(i int) bool {
		return f.lineOffsets[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(f.lineOffsets) {
		i = len(f.lineOffsets) - 1
	}
	lineStart := f.lineOffsets[i]
	col := offset - lineStart + 1
	if col < 1 {
		col = 1
	}
	return i + 1, col
}

// Offset converts (line, column) back to an absolute byte offset — O(1)
// given the precomputed table.
func (f *DefaultSourceFile) Offset(line, column int) int {
	idx := line - 1
	if idx < 0 || idx >= len(f.lineOffsets) {
		return len(f.content)
	}
	return f.lineOffsets[idx] + (column - 1)
}

// WordAt extracts the identifier-like token surrounding (line, column),
// grounded on original_source's SourceManager::extractWord.
func (f *DefaultSourceFile) WordAt(line, column int) string {
	text := f.Line(line)
	col := column - 1
	if col < 0 || col > len(text) {
		return ""
	}
	isWordChar := func(r byte) bool {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}
	start := col
	for start > 0 && isWordChar(text[start-1]) {
		start--
	}
	end := col
	for end < len(text) && isWordChar(text[end]) {
		end++
	}
	return text[start:end]
}

// ExpandedLine returns the line with tabs expanded to the next multiple of
// 4, for caret alignment only (spec §4.A, §6 "Tabs widen to 4 columns").
func ExpandedLine(line string) string {
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			spaces := 4 - (col % 4)
			for i := 0; i < spaces; i++ {
				b.WriteByte(' ')
			}
			col += spaces
		} else {
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// DisplayColumn converts a logical (tab=1) column into the visual column
// after tab expansion, so the caret lines up under the real character.
func DisplayColumn(line string, logicalColumn int) int {
	visual := 1
	logical := 1
	for _, r := range line {
		if logical >= logicalColumn {
			break
		}
		if r == '\t' {
			spaces := 4 - ((visual - 1) % 4)
			visual += spaces
		} else {
			visual++
		}
		logical++
	}
	return visual
}

// DefaultSourceManager implements domain.SourceManager: a registry of
// filename→SourceFile (original_source's `files_` map).
type DefaultSourceManager struct {
	files      map[string]*DefaultSourceFile
	identifier map[string]bool // all identifiers seen, for "did you mean?"
}

func NewSourceManager() *DefaultSourceManager {
	return &DefaultSourceManager{
		files:      make(map[string]*DefaultSourceFile),
		identifier: make(map[string]bool),
	}
}

func (m *DefaultSourceManager) AddFile(filename string, content string) *DefaultSourceFile {
	f := newSourceFile(filename, content)
	m.files[filename] = f
	return f
}

func (m *DefaultSourceManager) GetFile(filename string) (*DefaultSourceFile, bool) {
	f, ok := m.files[filename]
	return f, ok
}

func (m *DefaultSourceManager) HasFile(filename string) bool {
	_, ok := m.files[filename]
	return ok
}

// RecordIdentifier feeds the Levenshtein "did you mean?" pool (spec §4.A).
func (m *DefaultSourceManager) RecordIdentifier(name string) {
	if name != "" {
		m.identifier[name] = true
	}
}

var reservedWords = map[string]bool{
	"var": true, "if": true, "elif": true, "else": true, "while": true, "for": true,
	"in": true, "ret": true, "struct": true, "data": true, "impl": true, "extend": true,
	"extern": true, "true": true, "false": true, "null": true, "this": true, "match": true,
	"break": true, "continue": true, "import": true, "int": true, "str": true, "bool": true,
	"float": true, "double": true, "void": true,
}

// FindSimilar returns up to three previously-seen identifiers with
// Levenshtein distance ≤3 from target, excluding reserved words (spec
// §4.A "did you mean?").
func (m *DefaultSourceManager) FindSimilar(target string) []string {
	type cand struct {
		name string
		dist int
	}
	var candidates []cand
	for name := range m.identifier {
		if reservedWords[name] || name == target {
			continue
		}
		d := levenshtein(target, name)
		if d <= 3 {
			candidates = append(candidates, cand{name, d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	var out []string
	for i := 0; i < len(candidates) && i < 3; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

// ErrorContext is the rendering payload extracted around an error location
// (spec §4.A "Context extraction").
type ErrorContext struct {
	Filename          string
	Line              int
	Column            int
	Length            int
	ErrorLine         string
	ContextLines      []string
	ContextLineNums   []int
	CaretIndicator    string
}

// GetErrorContext returns the (2*contextLines+1) lines around line, the
// error line, and a caret string aligned to the displayed (tab-expanded)
// column (spec §4.A, invariant/property P1).
func (m *DefaultSourceManager) GetErrorContext(filename string, line, column, length, contextLines int) (ErrorContext, bool) {
	f, ok := m.GetFile(filename)
	if !ok {
		return ErrorContext{}, false
	}
	ctx := ErrorContext{Filename: filename, Line: line, Column: column, Length: length}
	start := line - contextLines
	if start < 1 {
		start = 1
	}
	end := line + contextLines
	if end > f.LineCount() {
		end = f.LineCount()
	}
	for l := start; l <= end; l++ {
		ctx.ContextLines = append(ctx.ContextLines, ExpandedLine(f.Line(l)))
		ctx.ContextLineNums = append(ctx.ContextLineNums, l)
		if l == line {
			ctx.ErrorLine = ExpandedLine(f.Line(l))
		}
	}
	ctx.CaretIndicator = buildCaret(f.Line(line), column, length)
	return ctx, true
}

// buildCaret builds the `^^^` run starting at the visual column
// corresponding to the logical column, per spec §4.A.
func buildCaret(line string, column, length int) string {
	visualCol := DisplayColumn(line, column)
	if length < 1 {
		length = 1
	}
	var b strings.Builder
	for i := 1; i < visualCol; i++ {
		b.WriteByte(' ')
	}
	for i := 0; i < length; i++ {
		b.WriteByte('^')
	}
	return b.String()
}
