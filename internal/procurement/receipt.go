package procurement

import (
	"context"
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

// ReceiptLine is one editable row of the receipt form.
type ReceiptLine struct {
	ItemID      string  `json:"itemId"`
	ItemName    string  `json:"itemName"`
	Ordered     float64 `json:"ordered"`
	Received    float64 `json:"received"`
	Remaining   float64 `json:"remaining"`
	ReceivedQty float64 `json:"receivedQty"`
}

// ReceiptDraft is the prefilled receipt form for a purchase order.
type ReceiptDraft struct {
	PurchaseOrderID string        `json:"purchaseOrderId"`
	PONumber        string        `json:"poNumber"`
	Vendor          Vendor        `json:"vendor"`
	Lines           []ReceiptLine `json:"lines"`
}

// ReceiptInput is the submitted receipt form.
type ReceiptInput struct {
	WarehouseID  string    `json:"warehouseId" validate:"required"`
	ReceivedDate string    `json:"receivedDate,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Items        []GRNItem `json:"items"`
}

// PrepareReceipt loads a purchase order and proposes receiving the full
// remaining balance of every line.
func (s *Service) PrepareReceipt(ctx context.Context, poID string) (ReceiptDraft, error) {
	po, err := s.receivablePO(ctx, poID)
	if err != nil {
		return ReceiptDraft{}, err
	}
	draft := ReceiptDraft{
		PurchaseOrderID: po.ID,
		PONumber:        po.PONumber,
		Vendor:          po.Vendor,
		Lines:           make([]ReceiptLine, 0, len(po.Items)),
	}
	for _, item := range po.Items {
		draft.Lines = append(draft.Lines, ReceiptLine{
			ItemID:      item.ID,
			ItemName:    item.ItemName,
			Ordered:     item.Quantity,
			Received:    item.ReceivedQty,
			Remaining:   item.Remaining(),
			ReceivedQty: item.Remaining(),
		})
	}
	return draft, nil
}

// CreateGRN posts a goods receipt for a purchase order. Lines with nothing
// received are dropped; a receipt with no lines left, or one that exceeds a
// line's remaining balance, is rejected before reaching the backend.
func (s *Service) CreateGRN(ctx context.Context, poID string, input ReceiptInput) (GoodsReceiptNote, string, error) {
	input.WarehouseID = strings.TrimSpace(input.WarehouseID)
	if err := s.validate.Struct(input); err != nil {
		return GoodsReceiptNote{}, "", httpx.Invalid("Choose the warehouse receiving the goods")
	}
	items := ReceivedItems(input.Items)
	if len(items) == 0 {
		return GoodsReceiptNote{}, "", httpx.Invalid("Enter a received quantity for at least one item")
	}

	po, err := s.receivablePO(ctx, poID)
	if err != nil {
		return GoodsReceiptNote{}, "", err
	}
	lines := make(map[string]POItem, len(po.Items))
	for _, item := range po.Items {
		lines[item.ID] = item
	}
	// Repeated item ids count against the same remaining balance.
	received := make(map[string]float64, len(items))
	for _, item := range items {
		line, ok := lines[item.ItemID]
		if !ok {
			return GoodsReceiptNote{}, "", httpx.Invalid(fmt.Sprintf("Item %s is not on %s", item.ItemID, po.PONumber))
		}
		received[item.ItemID] += item.ReceivedQty
		if received[item.ItemID] > line.Remaining() {
			return GoodsReceiptNote{}, "", httpx.Invalid(fmt.Sprintf("Only %g of %s remain to be received", line.Remaining(), line.ItemName))
		}
	}

	grn, msg, err := s.repo.CreateGRN(ctx, GoodsReceiptNote{
		PurchaseOrderID: po.ID,
		WarehouseID:     input.WarehouseID,
		ReceivedDate:    input.ReceivedDate,
		Notes:           strings.TrimSpace(input.Notes),
		Items:           items,
	})
	if err != nil {
		return GoodsReceiptNote{}, msg, err
	}
	s.recordAudit(ctx, "GRN_CREATE", "goods_receipt_note", grn.ID, map[string]any{"po": po.PONumber, "lines": len(items)})
	return grn, orDefault(msg, "Goods receipt recorded"), nil
}

// ReceivedItems keeps the lines with a positive received quantity.
func ReceivedItems(items []GRNItem) []GRNItem {
	out := make([]GRNItem, 0, len(items))
	for _, item := range items {
		if item.ReceivedQty > 0 {
			out = append(out, item)
		}
	}
	return out
}

func (s *Service) receivablePO(ctx context.Context, id string) (PurchaseOrder, error) {
	po, err := s.repo.GetPO(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if !allowed(POActions(po), ActionReceive) {
		return PurchaseOrder{}, stateError("purchase order", po.PONumber, ActionReceive, string(po.Status))
	}
	return po, nil
}
