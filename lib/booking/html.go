package booking

import (
	"inmatesearch-backend/lib/htmlutil"
	"inmatesearch-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseRows flattens every <tr> under sel into a Row in document order.
// Rows whose cells wrap a nested table are skipped, the nested table's own
// rows are visited instead.
func ParseRows(sel *goquery.Selection) []Row {
	rows := []Row{}
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td, th")
		if cells.Length() == 0 || cells.Find("table").Length() > 0 {
			return
		}

		row := Row{Cells: make([]string, 0, cells.Length())}
		cells.Each(func(_ int, cell *goquery.Selection) {
			if goquery.NodeName(cell) == "th" {
				row.HeaderCells++
			}
			text := ""
			if len(cell.Nodes) > 0 {
				text = textutil.Collapse(htmlutil.GetText(cell.Nodes[0]))
			}
			row.Cells = append(row.Cells, text)
		})
		row.Header = row.HeaderCells == len(row.Cells)
		rows = append(rows, row)
	})
	return rows
}
