// Package sheet reads and writes price book spreadsheets (CSV, XLSX and HTML tables).
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

const SheetName = "PriceBook"

var Header = []string{"Product Name", "Season Year", "Price", "Unit", "Vendor", "Source"}

var ErrNoHeader = errors.New("price sheet header not found")

// Row is one price line. Line is the 1-based sheet row it came from (0 when built in code).
type Row struct {
	ProductName string  `json:"product_name"`
	SeasonYear  int     `json:"season_year"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Vendor      string  `json:"vendor,omitempty"`
	Source      string  `json:"source,omitempty"`
	Line        int     `json:"line,omitempty"`
}

type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF") // BOM
	s = strings.ToLower(s)
	for _, r := range []string{" ", "-", "_", ".", "$", "(", ")"} {
		s = strings.ReplaceAll(s, r, "")
	}
	return s
}

type columns struct {
	product, season, price, unit, vendor, source int
}

func findColumns(head []string) (columns, bool) {
	hmap := map[string]int{}
	for i, h := range head {
		if _, dup := hmap[norm(h)]; !dup {
			hmap[norm(h)] = i
		}
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[norm(k)]; ok {
				return idx
			}
		}
		return -1
	}
	c := columns{
		product: findAny("Product Name", "product", "name", "item", "description"),
		season:  findAny("Season Year", "season", "year"),
		price:   findAny("Price", "unit price", "net price", "cost"),
		unit:    findAny("Unit", "uom", "price uom", "price unit", "per"),
		vendor:  findAny("Vendor", "supplier", "dealer", "retailer"),
		source:  findAny("Source", "price source", "type"),
	}
	return c, c.product != -1 && c.price != -1 && c.unit != -1
}

// parseTable turns header+records into rows. Unreadable records are reported
// per line and do not stop the rest of the sheet.
func parseTable(records [][]string) ([]Row, []RowError, error) {
	if len(records) == 0 {
		return nil, nil, ErrNoHeader
	}
	cols, ok := findColumns(records[0])
	if !ok {
		return nil, nil, fmt.Errorf("%w: need Product Name, Price, Unit; found %v", ErrNoHeader, records[0])
	}

	var rows []Row
	var errs []RowError
	for i, rec := range records[1:] {
		line := i + 2
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		if strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}

		r := Row{
			ProductName: get(cols.product),
			Unit:        get(cols.unit),
			Vendor:      get(cols.vendor),
			Source:      get(cols.source),
			Line:        line,
		}
		if r.ProductName == "" {
			errs = append(errs, RowError{Line: line, Error: "product name is empty"})
			continue
		}
		priceText := strings.NewReplacer("$", "", ",", "").Replace(get(cols.price))
		price, err := strconv.ParseFloat(priceText, 64)
		if err != nil {
			errs = append(errs, RowError{Line: line, Error: fmt.Sprintf("price %q is not a number", get(cols.price))})
			continue
		}
		r.Price = price
		if s := get(cols.season); s != "" {
			year, err := strconv.Atoi(s)
			if err != nil {
				errs = append(errs, RowError{Line: line, Error: fmt.Sprintf("season %q is not a year", s)})
				continue
			}
			r.SeasonYear = year
		}
		rows = append(rows, r)
	}
	return rows, errs, nil
}

func records(rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, Header)
	for _, r := range rows {
		season := ""
		if r.SeasonYear > 0 {
			season = strconv.Itoa(r.SeasonYear)
		}
		out = append(out, []string{
			r.ProductName, season, strconv.FormatFloat(r.Price, 'f', -1, 64), r.Unit, r.Vendor, r.Source,
		})
	}
	return out
}

func ReadCSV(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return parseTable(recs)
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records(rows)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadXLSX reads the PriceBook sheet, or the first sheet when there is none.
func ReadXLSX(r io.Reader) ([]Row, []RowError, error) {
	x, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer x.Close()

	name := SheetName
	if idx, err := x.GetSheetIndex(name); err != nil || idx < 0 {
		name = x.GetSheetName(0)
	}
	recs, err := x.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return parseTable(recs)
}

func WriteXLSX(w io.Writer, rows []Row) error {
	x := excelize.NewFile()
	defer x.Close()
	if err := x.SetSheetName(x.GetSheetName(0), SheetName); err != nil {
		return err
	}
	for i, rec := range records(rows) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(rec))
		for j, v := range rec {
			vals[j] = v
		}
		// keep numbers numeric so the sheet sums in a spreadsheet app
		if i > 0 {
			vals[2] = rows[i-1].Price
			if rows[i-1].SeasonYear > 0 {
				vals[1] = rows[i-1].SeasonYear
			}
		}
		if err := x.SetSheetRow(SheetName, cell, &vals); err != nil {
			return err
		}
	}
	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// ReadHTML parses the first <table> whose header row names a product, price and unit.
func ReadHTML(r io.Reader) ([]Row, []RowError, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	var (
		rows  []Row
		errs  []RowError
		found bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var recs [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var rec []string
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				rec = append(rec, strings.Join(strings.Fields(cell.Text()), " "))
			})
			if len(rec) > 0 {
				recs = append(recs, rec)
			}
		})
		if len(recs) == 0 {
			return true
		}
		if _, ok := findColumns(recs[0]); !ok {
			return true
		}
		rows, errs, err = parseTable(recs)
		found = err == nil
		return !found
	})
	if !found {
		return nil, nil, ErrNoHeader
	}
	return rows, errs, nil
}
