package service

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Aashish23092/statement-extraction/utils/columns"
	"github.com/Aashish23092/statement-extraction/utils/statement"
)

// minHeaderRoles is how many distinct column roles a line must name before it
// is taken as a table header. One is common in descriptions ("ATM
// WITHDRAWAL"), and "Transaction Date" alone names only the date.
const minHeaderRoles = 2

func findHeader(lines [][]columns.Word) int {
	idx := columns.HeaderLine(lines)
	if idx < 0 || len(columns.HeaderRoles(lines[idx])) < minHeaderRoles {
		return -1
	}
	return idx
}

// HeaderTables builds one table per page from positioned words. Header cells
// anchor the columns and every following line is split onto the nearest
// anchor. A page without its own header continues the previous page's table
// layout. gap is the widest space inside one cell.
func HeaderTables(pages [][]columns.Word, gap float64) []statement.Table {
	var tables []statement.Table
	var anchors []columns.Cell

	for _, words := range pages {
		lines := columns.ClusterLines(words, columns.LineTolerance)
		start := 0
		if idx := findHeader(lines); idx >= 0 {
			anchors = columns.MergeCells(lines[idx], gap)
			start = idx + 1
		}
		if len(anchors) == 0 {
			continue
		}

		t := statement.Table{Header: columns.CellTexts(anchors)}
		for _, line := range lines[start:] {
			t.Rows = append(t.Rows, assignCells(columns.MergeCells(line, gap), anchors))
		}
		if len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	}
	return tables
}

func assignCells(cells []columns.Cell, anchors []columns.Cell) []string {
	row := make([]string, len(anchors))
	for _, c := range cells {
		i := nearest(c.Center(), anchors)
		row[i] = strings.TrimSpace(row[i] + " " + c.Text)
	}
	return row
}

func nearest(x float64, anchors []columns.Cell) int {
	best, bestDist := 0, math.Inf(1)
	for i, a := range anchors {
		if x >= a.X0 && x <= a.X1 {
			return i
		}
		if d := math.Abs(a.Center() - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// minBandCells is how many cells a line needs to take part in column band
// detection.
const minBandCells = 3

// AlignedTables derives columns from how the data lines line up rather than
// from header cell positions. Cell extents of the body lines are merged into
// vertical bands; the gutters between bands separate columns. Header words
// are then assigned to bands, which copes with header labels that are offset
// from or wider than their column.
func AlignedTables(pages [][]columns.Word, gap float64) []statement.Table {
	var tables []statement.Table
	var header []columns.Word

	for _, words := range pages {
		lines := columns.ClusterLines(words, columns.LineTolerance)
		start := 0
		if idx := findHeader(lines); idx >= 0 {
			header = lines[idx]
			start = idx + 1
		}
		if header == nil {
			continue
		}

		body := make([][]columns.Cell, 0, len(lines)-start)
		for _, line := range lines[start:] {
			body = append(body, columns.MergeCells(line, gap))
		}
		bands := columnBands(body)
		if len(bands) < minBandCells {
			continue
		}

		t := statement.Table{Header: make([]string, len(bands))}
		for _, w := range header {
			i := nearest((w.X0+w.X1)/2, bands)
			t.Header[i] = strings.TrimSpace(t.Header[i] + " " + w.Text)
		}
		for _, cells := range body {
			t.Rows = append(t.Rows, assignCells(cells, bands))
		}
		tables = append(tables, t)
	}
	return tables
}

func columnBands(rows [][]columns.Cell) []columns.Cell {
	var spans []columns.Cell
	for _, r := range rows {
		if len(r) < minBandCells {
			continue
		}
		spans = append(spans, r...)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].X0 < spans[j].X0 })

	var bands []columns.Cell
	for _, s := range spans {
		if n := len(bands); n > 0 && s.X0 <= bands[n-1].X1 {
			if s.X1 > bands[n-1].X1 {
				bands[n-1].X1 = s.X1
			}
			continue
		}
		bands = append(bands, columns.Cell{X0: s.X0, X1: s.X1})
	}
	return bands
}

var layoutRun = regexp.MustCompile(`\S+(?: \S+)*`)

// layoutLineHeight spaces text lines further apart than the line clustering
// tolerance.
const layoutLineHeight = 10

// LayoutWords turns whitespace-aligned layout text into positioned words:
// runs separated by two or more spaces become words, columns are measured in
// characters and pages are split on form feeds.
func LayoutWords(text string) [][]columns.Word {
	var pages [][]columns.Word
	for _, page := range strings.Split(text, "\f") {
		var words []columns.Word
		for i, line := range strings.Split(page, "\n") {
			for _, loc := range layoutRun.FindAllStringIndex(line, -1) {
				x0 := float64(utf8.RuneCountInString(line[:loc[0]]))
				x1 := x0 + float64(utf8.RuneCountInString(line[loc[0]:loc[1]]))
				words = append(words, columns.Word{
					Text: line[loc[0]:loc[1]],
					X0:   x0,
					X1:   x1,
					Top:  float64(i * layoutLineHeight),
				})
			}
		}
		if len(words) > 0 {
			pages = append(pages, words)
		}
	}
	return pages
}
