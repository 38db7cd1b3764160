package holdings

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

// LoadWorkbook reads holdings from the first sheet of an .xlsx workbook. The
// header row maps columns by name, so column order doesn't matter. Rows with
// an empty symbol are skipped.
func LoadWorkbook(path string) ([]model.Holding, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: can't open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: can't read sheet %s", err, sheets[0])
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := header[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var holdings []model.Holding
	for _, row := range rows[1:] {
		symbol := cell(row, "symbol")
		if symbol == "" {
			continue
		}

		price, _ := strconv.ParseFloat(cell(row, "purchaseprice", "purchase_price"), 64)
		quantity, _ := strconv.ParseInt(cell(row, "quantity"), 10, 64)

		holdings = append(holdings, model.Holding{
			Symbol:        symbol,
			Name:          cmp.Or(cell(row, "name"), symbol),
			Exchange:      cmp.Or(cell(row, "exchange"), "NSE"),
			Sector:        cmp.Or(cell(row, "sector"), "Others"),
			PurchasePrice: price,
			Quantity:      quantity,
			PurchaseDate:  cell(row, "purchasedate", "purchase_date"),
		})
	}

	return holdings, nil
}
