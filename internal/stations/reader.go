// Package stations reads station location tables from the formats they
// arrive in (CSV, Excel workbooks, point shapefiles) into dataframes, and
// writes enriched results back out as CSV or GeoJSON.
package stations

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadOptions controls station file parsing.
type ReadOptions struct {
	// Encoding names the CSV character encoding: "" or "utf8" for UTF-8,
	// "latin1" for ISO-8859-1 (common in met-service station lists).
	Encoding string

	// SheetIndex selects the worksheet for XLSX inputs.
	SheetIndex int
}

// Read loads a station table, dispatching on the file extension.
// Shapefile inputs synthesize "longitude"/"latitude" columns from point
// geometry alongside the attribute columns.
func Read(path string, opts ReadOptions) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return readCSVFile(path, opts.Encoding)
	case ".xlsx":
		return readXLSX(path, opts.SheetIndex)
	case ".shp":
		return readShapefile(path)
	default:
		return dataframe.DataFrame{}, eris.Errorf("stations: unsupported input format %q", filepath.Ext(path))
	}
}

func readCSVFile(path, encoding string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, eris.Wrapf(err, "stations: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, encoding)
}

// ReadCSV parses a CSV station table from r, decoding from the named
// character encoding first.
func ReadCSV(r io.Reader, encoding string) (dataframe.DataFrame, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
		// no transcoding
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return dataframe.DataFrame{}, eris.Errorf("stations: unsupported encoding %q", encoding)
	}

	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(df.Err, "stations: parse CSV")
	}
	return df, nil
}

// readXLSX loads the given worksheet, first row as header.
func readXLSX(path string, sheetIndex int) (dataframe.DataFrame, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, eris.Wrapf(err, "stations: open workbook %s", path)
	}

	if sheetIndex < 0 || sheetIndex >= len(f.Sheets) {
		return dataframe.DataFrame{}, eris.Errorf("stations: workbook %s has no sheet %d", path, sheetIndex)
	}
	sheet := f.Sheets[sheetIndex]

	var records [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		records = append(records, cells)
	}

	if len(records) < 2 {
		return dataframe.DataFrame{}, eris.Errorf("stations: workbook %s sheet %d has no data rows", path, sheetIndex)
	}

	df := dataframe.LoadRecords(records)
	if df.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(df.Err, "stations: load workbook rows")
	}
	return df, nil
}

// readShapefile loads a point shapefile: attributes become columns plus
// synthesized longitude/latitude columns from each point geometry.
func readShapefile(path string) (dataframe.DataFrame, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, eris.Wrapf(err, "stations: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	header := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		header = append(header, name)
	}
	header = append(header, "longitude", "latitude")

	records := [][]string{header}
	for reader.Next() {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			return dataframe.DataFrame{}, eris.Errorf("stations: shapefile %s contains non-point geometry", path)
		}

		row := make([]string, 0, len(fields)+2)
		for i := range fields {
			val := strings.TrimRight(reader.Attribute(i), "\x00")
			row = append(row, strings.TrimSpace(val))
		}
		row = append(row,
			fmt.Sprintf("%g", point.X),
			fmt.Sprintf("%g", point.Y),
		)
		records = append(records, row)
	}

	if len(records) < 2 {
		return dataframe.DataFrame{}, eris.Errorf("stations: shapefile %s has no point records", path)
	}

	df := dataframe.LoadRecords(records)
	if df.Err != nil {
		return dataframe.DataFrame{}, eris.Wrap(df.Err, "stations: load shapefile rows")
	}
	return df, nil
}
