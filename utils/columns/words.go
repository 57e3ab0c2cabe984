package columns

import (
	"sort"
	"strings"
)

// Word is a positioned text fragment on a page. Top grows downwards.
type Word struct {
	Text string
	X0   float64
	X1   float64
	Top  float64
}

// LineTolerance is how far apart two fragments' tops may be while still
// sitting on the same visual line.
const LineTolerance = 2.0

// CellGap is the widest horizontal gap between two fragments of one header
// cell.
const CellGap = 8.0

// ClusterLines groups fragments into lines by their top coordinate, each line
// sorted left to right and the lines sorted top to bottom.
func ClusterLines(words []Word, tol float64) [][]Word {
	sorted := append([]Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]Word
	var anchor float64
	for _, w := range sorted {
		if len(lines) > 0 && w.Top-anchor <= tol {
			lines[len(lines)-1] = append(lines[len(lines)-1], w)
			continue
		}
		lines = append(lines, []Word{w})
		anchor = w.Top
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })
	}
	return lines
}

func lineTokens(line []Word) []string {
	var tokens []string
	for _, w := range line {
		tokens = append(tokens, Tokenize(w.Text)...)
	}
	return tokens
}

// HeaderLine returns the index of the line scoring the most keyword hits, or
// -1 when no line contains any.
func HeaderLine(lines [][]Word) int {
	best, bestScore := -1, 0
	for i, line := range lines {
		if score := ScoreLine(lineTokens(line)); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// HeaderRoles lists the distinct column roles a header line names, left to
// right.
func HeaderRoles(line []Word) []Role {
	return ClassifyTokens(lineTokens(line))
}

// Cell is a run of adjacent fragments on one line.
type Cell struct {
	Text string
	X0   float64
	X1   float64
}

// Center is the horizontal middle of the cell.
func (c Cell) Center() float64 {
	return (c.X0 + c.X1) / 2
}

// MergeCells joins fragments separated by less than gap into cells.
func MergeCells(line []Word, gap float64) []Cell {
	var cells []Cell
	for _, w := range line {
		if n := len(cells); n > 0 && w.X0-cells[n-1].X1 < gap {
			cells[n-1].Text = strings.TrimSpace(cells[n-1].Text + " " + w.Text)
			if w.X1 > cells[n-1].X1 {
				cells[n-1].X1 = w.X1
			}
			continue
		}
		cells = append(cells, Cell{Text: strings.TrimSpace(w.Text), X0: w.X0, X1: w.X1})
	}
	return cells
}

// CellTexts returns the text of each cell.
func CellTexts(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}
