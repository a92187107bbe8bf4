package procurement

import (
	"context"
	"math"

	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// Comparison is a side-by-side view of every quotation received for an RFQ.
// Rows follow the RFQ lines, columns follow the quotations.
type Comparison struct {
	RFQID     string             `json:"rfqId"`
	RFQNumber string             `json:"rfqNumber"`
	Columns   []ComparisonColumn `json:"columns"`
	Rows      []ComparisonRow    `json:"rows"`
}

// ComparisonColumn summarises one quotation.
type ComparisonColumn struct {
	QuotationID string          `json:"quotationId"`
	Vendor      string          `json:"vendor"`
	Status      QuotationStatus `json:"status"`
	Subtotal    string          `json:"subtotal"`
	Tax         string          `json:"tax"`
	Discount    string          `json:"discount"`
	Total       string          `json:"total"`
	Selected    bool            `json:"selected"`
	Lowest      bool            `json:"lowest"`
}

// ComparisonRow is one RFQ line priced by each quotation.
type ComparisonRow struct {
	RFQItemID string           `json:"rfqItemId"`
	ItemName  string           `json:"itemName"`
	Quantity  string           `json:"quantity"`
	Cells     []ComparisonCell `json:"cells"`
}

// ComparisonCell is a quotation's price for a line. QuotedQty is the vendor's
// own quantity, which may be less than the RFQ asked for. Quoted is false when
// the vendor left the line out.
type ComparisonCell struct {
	UnitPrice string `json:"unitPrice"`
	QuotedQty string `json:"quotedQty"`
	LineTotal string `json:"lineTotal"`
	Quoted    bool   `json:"quoted"`
	Lowest    bool   `json:"lowest"`
}

// Compare builds the comparison grid for an RFQ. Rejected quotations are
// shown but never marked lowest.
func (s *Service) Compare(ctx context.Context, rfqID string, tag language.Tag) (Comparison, error) {
	rfq, err := s.repo.GetRFQ(ctx, rfqID)
	if err != nil {
		return Comparison{}, err
	}
	quotations, err := s.repo.ListQuotations(ctx, rfq.ID)
	if err != nil {
		return Comparison{}, err
	}
	return buildComparison(rfq, quotations, tag), nil
}

func buildComparison(rfq RFQ, quotations []VendorQuotation, tag language.Tag) Comparison {
	cmp := Comparison{
		RFQID:     rfq.ID,
		RFQNumber: rfq.RFQNumber,
		Columns:   make([]ComparisonColumn, 0, len(quotations)),
		Rows:      make([]ComparisonRow, 0, len(rfq.Items)),
	}

	lowestTotal := math.Inf(1)
	for _, q := range quotations {
		if q.Status != QuotationStatusRejected && q.TotalAmount < lowestTotal {
			lowestTotal = q.TotalAmount
		}
		cmp.Columns = append(cmp.Columns, ComparisonColumn{
			QuotationID: q.ID,
			Vendor:      q.Vendor.Name,
			Status:      q.Status,
			Subtotal:    shared.FormatAmount(tag, q.Subtotal),
			Tax:         shared.FormatAmount(tag, q.TaxAmount),
			Discount:    shared.FormatAmount(tag, q.DiscountAmount),
			Total:       shared.FormatAmount(tag, q.TotalAmount),
			Selected:    q.Status == QuotationStatusSelected,
		})
	}
	for i, q := range quotations {
		cmp.Columns[i].Lowest = q.Status != QuotationStatusRejected && q.TotalAmount == lowestTotal
	}

	for _, line := range rfq.Items {
		row := ComparisonRow{
			RFQItemID: line.ID,
			ItemName:  line.ItemName,
			Quantity:  shared.FormatQty(tag, line.Quantity),
			Cells:     make([]ComparisonCell, len(quotations)),
		}
		lowestPrice := math.Inf(1)
		prices := make([]float64, len(quotations))
		for i, q := range quotations {
			item, ok := quotedLine(q, line.ID)
			if !ok {
				prices[i] = math.NaN()
				row.Cells[i] = ComparisonCell{UnitPrice: "-", QuotedQty: "-", LineTotal: "-"}
				continue
			}
			prices[i] = item.UnitPrice
			if q.Status != QuotationStatusRejected && item.UnitPrice < lowestPrice {
				lowestPrice = item.UnitPrice
			}
			row.Cells[i] = ComparisonCell{
				UnitPrice: shared.FormatAmount(tag, item.UnitPrice),
				QuotedQty: shared.FormatQty(tag, item.QuotedQty),
				LineTotal: shared.FormatAmount(tag, item.LineTotal),
				Quoted:    true,
			}
		}
		for i, q := range quotations {
			row.Cells[i].Lowest = row.Cells[i].Quoted && q.Status != QuotationStatusRejected && prices[i] == lowestPrice
		}
		cmp.Rows = append(cmp.Rows, row)
	}
	return cmp
}

func quotedLine(q VendorQuotation, rfqItemID string) (QuotationItem, bool) {
	for _, item := range q.Items {
		if item.RFQItemID == rfqItemID {
			return item, true
		}
	}
	return QuotationItem{}, false
}
