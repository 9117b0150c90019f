// Package export renders timetable content as CSV, HTML and PDF. It knows
// nothing about the solver; callers hand it ready-made grids and tables.
package export

import "strconv"

// Grid is one owner's weekly matrix: rows are days, columns are periods,
// both in ascending order. Cells hold display text, empty for a free
// period; multi-line cells are expected and every renderer keeps the break.
type Grid struct {
	Title   string
	Days    []int
	Periods []int
	Cells   [][]string
}

// Table flattens the grid into the Day/Period table layout: a leading
// header column with the day number, one column per period.
func (g Grid) Table() Table {
	headers := make([]string, 0, len(g.Periods)+1)
	headers = append(headers, "Day/Period")
	for _, p := range g.Periods {
		headers = append(headers, strconv.Itoa(p))
	}
	rows := make([][]string, 0, len(g.Days))
	for i, d := range g.Days {
		row := make([]string, 0, len(g.Periods)+1)
		row = append(row, strconv.Itoa(d))
		row = append(row, g.Cells[i]...)
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}
