package layer

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// TableMapping names the coordinate columns of a tabular point source. The
// SRID is left zero unless the source declares one; AlignSRID fills it in
// from the region layer before matching.
type TableMapping struct {
	XColumn string `yaml:"x_column"`
	YColumn string `yaml:"y_column"`
	SRID    int    `yaml:"srid"`
}

// LoadPointsCSV reads a CSV file with a header row into a PointLayer.
func LoadPointsCSV(path string, tm TableMapping) (*PointLayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open csv %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read csv header %s", path)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "layer: read csv row %s", path)
		}
		rows = append(rows, rec)
	}

	return pointsFromRows(header, rows, tm)
}

// LoadPointsXLSX reads the first sheet of an XLSX workbook into a PointLayer.
// The first row is treated as the header.
func LoadPointsXLSX(path string, tm TableMapping) (*PointLayer, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("layer: no sheets in %s", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("layer: empty sheet in %s", path)
	}

	header := rowToStrings(sheet.Rows[0])
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(row))
	}

	return pointsFromRows(header, rows, tm)
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// pointsFromRows converts raw table rows into point records, parsing the two
// coordinate columns and keeping every column as a string attribute.
func pointsFromRows(header []string, rows [][]string, tm TableMapping) (*PointLayer, error) {
	xIdx, yIdx := -1, -1
	for i, col := range header {
		name := strings.TrimSpace(col)
		header[i] = name
		if strings.EqualFold(name, tm.XColumn) {
			xIdx = i
		}
		if strings.EqualFold(name, tm.YColumn) {
			yIdx = i
		}
	}
	if xIdx < 0 || yIdx < 0 {
		return nil, eris.Errorf("layer: coordinate columns %q/%q not found in header", tm.XColumn, tm.YColumn)
	}

	out := &PointLayer{SRID: tm.SRID, Columns: header}
	for i, row := range rows {
		if xIdx >= len(row) || yIdx >= len(row) {
			return nil, eris.Errorf("layer: row %d has %d columns, need at least %d", i+1, len(row), max(xIdx, yIdx)+1)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(row[xIdx]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "layer: row %d: parse %s", i+1, tm.XColumn)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(row[yIdx]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "layer: row %d: parse %s", i+1, tm.YColumn)
		}

		attrs := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				attrs[col] = strings.TrimSpace(row[j])
			}
		}
		out.Points = append(out.Points, PointRecord{X: x, Y: y, Attrs: attrs})
	}

	return out, nil
}
