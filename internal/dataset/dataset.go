// Package dataset loads and merges the three collected CSV tables
// (sales, competitor prices, visitor behavior) into training rows, applying
// the documented imputation policy: a missing competitor price defaults to
// the product's own mean price, missing behavioral counts default to zero.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/feature"
)

// Expected file names inside the data directory.
const (
	SalesFile      = "sales_data.csv"
	CompetitorFile = "competitor_data.csv"
	CustomerFile   = "customer_data.csv"
)

const dateLayout = "2006-01-02"

// Row is one merged (product, day) training example.
type Row struct {
	ProductID string
	Date      time.Time

	Sales      int
	Revenue    float64
	Price      float64
	StockLevel int
	MaxStock   int
	Cost       float64

	CompetitorPrice    float64
	MinCompetitorPrice float64
	MaxCompetitorPrice float64
	CompetitorPriceStd float64

	Views     int
	AddToCart int
	Purchases int
}

type mergeKey struct {
	productID string
	date      time.Time
}

// Load reads the three CSV tables from dir and left-merges competitor and
// customer data onto the sales table on (product_id, date). A missing or
// unreadable table, or a sales table that joins to nothing, is a DataError.
func Load(dir string) ([]Row, error) {
	salesRows, err := readTable(filepath.Join(dir, SalesFile),
		[]string{"product_id", "date", "sales", "revenue", "price", "stock_level", "max_stock", "cost"})
	if err != nil {
		return nil, err
	}
	if len(salesRows) == 0 {
		return nil, &apperr.DataError{Op: fmt.Sprintf("load dataset: %s has no rows", SalesFile)}
	}
	competitorRows, err := readTable(filepath.Join(dir, CompetitorFile),
		[]string{"product_id", "date", "competitor_price", "min_competitor_price", "max_competitor_price", "competitor_price_std"})
	if err != nil {
		return nil, err
	}
	customerRows, err := readTable(filepath.Join(dir, CustomerFile),
		[]string{"product_id", "date", "views", "add_to_cart", "purchases"})
	if err != nil {
		return nil, err
	}

	competitorByKey := make(map[mergeKey]record, len(competitorRows))
	for _, r := range competitorRows {
		competitorByKey[keyOf(r)] = r
	}
	customerByKey := make(map[mergeKey]record, len(customerRows))
	for _, r := range customerRows {
		customerByKey[keyOf(r)] = r
	}

	// Per-product mean price for the competitor-price imputation
	priceSum := make(map[string]float64)
	priceCount := make(map[string]int)
	for _, r := range salesRows {
		priceSum[r.str("product_id")] += r.num("price")
		priceCount[r.str("product_id")]++
	}

	rows := make([]Row, 0, len(salesRows))
	for _, s := range salesRows {
		key := keyOf(s)
		row := Row{
			ProductID:  s.str("product_id"),
			Date:       key.date,
			Sales:      int(s.num("sales")),
			Revenue:    s.num("revenue"),
			Price:      s.num("price"),
			StockLevel: int(s.num("stock_level")),
			MaxStock:   int(s.num("max_stock")),
			Cost:       s.num("cost"),
		}

		if c, ok := competitorByKey[key]; ok {
			row.CompetitorPrice = c.num("competitor_price")
			row.MinCompetitorPrice = c.num("min_competitor_price")
			row.MaxCompetitorPrice = c.num("max_competitor_price")
			row.CompetitorPriceStd = c.num("competitor_price_std")
		} else {
			meanPrice := priceSum[row.ProductID] / float64(priceCount[row.ProductID])
			row.CompetitorPrice = meanPrice
			row.MinCompetitorPrice = meanPrice
			row.MaxCompetitorPrice = meanPrice
		}

		if b, ok := customerByKey[key]; ok {
			row.Views = int(b.num("views"))
			row.AddToCart = int(b.num("add_to_cart"))
			row.Purchases = int(b.num("purchases"))
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// Observations converts merged rows into domain observations for the
// scoring pipeline.
func Observations(rows []Row) []*domain.Observation {
	out := make([]*domain.Observation, len(rows))
	for i, r := range rows {
		out[i] = &domain.Observation{
			ProductID:          r.ProductID,
			Date:               r.Date,
			Sales:              r.Sales,
			Revenue:            r.Revenue,
			AvgOrderValue:      r.Price,
			CompetitorPrice:    r.CompetitorPrice,
			MinCompetitorPrice: r.MinCompetitorPrice,
			MaxCompetitorPrice: r.MaxCompetitorPrice,
			CompetitorPriceStd: r.CompetitorPriceStd,
			Views:              r.Views,
			AddToCart:          r.AddToCart,
			Purchases:          r.Purchases,
			StockLevel:         r.StockLevel,
			MaxStock:           r.MaxStock,
			Cost:               r.Cost,
			CompletedOrders:    r.Sales,
		}
	}
	return out
}

// Matrix builds the training feature matrix and target vector through the
// shared single-record builder, keeping the column schema identical to what
// the predictor will produce at inference time.
func Matrix(rows []Row) (x [][]float64, y []float64) {
	for _, r := range rows {
		x = append(x, feature.BuildRow(feature.Record{
			Date:            r.Date,
			Price:           r.Price,
			CompetitorPrice: r.CompetitorPrice,
			Sales:           r.Sales,
			Views:           r.Views,
			StockLevel:      r.StockLevel,
			MaxStock:        r.MaxStock,
		}))
		y = append(y, r.Price)
	}
	return x, y
}

// record is one parsed CSV row with column access by header name.
type record struct {
	path   string
	line   int
	fields map[string]string
	parsed map[string]float64
	date   time.Time
}

func keyOf(r record) mergeKey {
	return mergeKey{productID: r.str("product_id"), date: r.date}
}

func (r record) str(col string) string  { return r.fields[col] }
func (r record) num(col string) float64 { return r.parsed[col] }

// readTable parses one CSV file with a header row. requiredCols must all be
// present; numeric columns are parsed eagerly so data problems surface with
// file and line context.
func readTable(path string, requiredCols []string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &apperr.DataError{Op: fmt.Sprintf("open %s", path), Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &apperr.DataError{Op: fmt.Sprintf("read header of %s", path), Err: err}
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, col := range requiredCols {
		if _, ok := colIdx[col]; !ok {
			return nil, &apperr.DataError{Op: fmt.Sprintf("%s: missing required column %q", path, col)}
		}
	}

	var rows []record
	line := 1
	for {
		raw, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &apperr.DataError{Op: fmt.Sprintf("read %s line %d", path, line+1), Err: err}
		}
		line++

		rec := record{
			path:   path,
			line:   line,
			fields: make(map[string]string, len(requiredCols)),
			parsed: make(map[string]float64, len(requiredCols)),
		}
		for _, col := range requiredCols {
			value := ""
			if idx := colIdx[col]; idx < len(raw) {
				value = raw[idx]
			}
			rec.fields[col] = value

			switch col {
			case "product_id":
				if value == "" {
					return nil, &apperr.DataError{Op: fmt.Sprintf("%s line %d: empty product_id", path, line)}
				}
			case "date":
				d, err := time.Parse(dateLayout, value)
				if err != nil {
					return nil, &apperr.DataError{Op: fmt.Sprintf("%s line %d: bad date %q", path, line, value)}
				}
				rec.date = d
			default:
				// Empty numeric cells stay zero; the imputation policy and
				// downstream preconditions decide what that means.
				if value != "" {
					n, err := strconv.ParseFloat(value, 64)
					if err != nil {
						return nil, &apperr.DataError{Op: fmt.Sprintf("%s line %d: bad number %q in column %s", path, line, value, col)}
					}
					rec.parsed[col] = n
				}
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
