package procurement

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

// PRStatus is the purchase requisition lifecycle status.
type PRStatus string

const (
	PRStatusDraft     PRStatus = "DRAFT"
	PRStatusSubmitted PRStatus = "SUBMITTED"
	PRStatusApproved  PRStatus = "APPROVED"
	PRStatusRejected  PRStatus = "REJECTED"
)

// RFQStatus is the request-for-quotation lifecycle status.
type RFQStatus string

const (
	RFQStatusDraft  RFQStatus = "DRAFT"
	RFQStatusSent   RFQStatus = "SENT"
	RFQStatusClosed RFQStatus = "CLOSED"
)

// QuotationStatus is the vendor quotation lifecycle status.
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "DRAFT"
	QuotationStatusSubmitted QuotationStatus = "SUBMITTED"
	QuotationStatusSelected  QuotationStatus = "SELECTED"
	QuotationStatusRejected  QuotationStatus = "REJECTED"
)

// POStatus is owned by the backend. Only CLOSED carries meaning here.
type POStatus string

const (
	POStatusDraft             POStatus = "DRAFT"
	POStatusOpen              POStatus = "OPEN"
	POStatusPartiallyReceived POStatus = "PARTIALLY_RECEIVED"
	POStatusClosed            POStatus = "CLOSED"
	POStatusCancelled         POStatus = "CANCELLED"
)

// Vendor is the supplier reference embedded in documents.
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PRItem is a requested line.
type PRItem struct {
	ID       string  `json:"id,omitempty"`
	ItemID   string  `json:"itemId"`
	ItemName string  `json:"itemName,omitempty"`
	Quantity float64 `json:"quantity"`
	UOM      string  `json:"uom,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// PurchaseRequisition is a request to procure items.
type PurchaseRequisition struct {
	ID          string   `json:"id"`
	PRNumber    string   `json:"prNumber"`
	Status      PRStatus `json:"status"`
	RequestedBy string   `json:"requestedBy"`
	RequestDate string   `json:"requestDate"`
	Department  string   `json:"department"`
	Notes       string   `json:"notes,omitempty"`
	Items       []PRItem `json:"items"`
}

// RFQItem is a line sent to vendors for pricing.
type RFQItem struct {
	ID       string  `json:"id"`
	ItemID   string  `json:"itemId,omitempty"`
	ItemName string  `json:"itemName"`
	Quantity float64 `json:"quantity"`
	UOM      string  `json:"uom,omitempty"`
}

// RFQ is a request for quotation.
type RFQ struct {
	ID                    string    `json:"id"`
	RFQNumber             string    `json:"rfqNumber"`
	PurchaseRequisitionID string    `json:"purchaseRequisitionId,omitempty"`
	Status                RFQStatus `json:"status"`
	DueDate               string    `json:"dueDate,omitempty"`
	Vendors               []Vendor  `json:"vendors,omitempty"`
	Items                 []RFQItem `json:"items"`
}

// QuotationItem is a vendor's price for one RFQ line.
type QuotationItem struct {
	ID              string  `json:"id,omitempty"`
	RFQItemID       string  `json:"rfqItemId"`
	ItemName        string  `json:"itemName,omitempty"`
	UnitPrice       float64 `json:"unitPrice"`
	QuotedQty       float64 `json:"quotedQty"`
	TaxPercent      float64 `json:"taxPercent"`
	DiscountPercent float64 `json:"discountPercent"`
	LineTotal       float64 `json:"lineTotal"`
}

// VendorQuotation is a vendor's answer to an RFQ. Totals come from the backend
// and are never recomputed.
type VendorQuotation struct {
	ID              string          `json:"id"`
	QuotationNumber string          `json:"quotationNumber,omitempty"`
	RFQID           string          `json:"rfqId"`
	Vendor          Vendor          `json:"vendor"`
	Status          QuotationStatus `json:"status"`
	Items           []QuotationItem `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	TaxAmount       float64         `json:"taxAmount"`
	DiscountAmount  float64         `json:"discountAmount"`
	TotalAmount     float64         `json:"totalAmount"`
}

// POItem is an ordered line with its receipt progress.
type POItem struct {
	ID          string  `json:"id"`
	ItemID      string  `json:"itemId,omitempty"`
	ItemName    string  `json:"itemName"`
	Quantity    float64 `json:"quantity"`
	ReceivedQty float64 `json:"receivedQty"`
	UnitPrice   float64 `json:"unitPrice,omitempty"`
	UOM         string  `json:"uom,omitempty"`
}

// Remaining returns the quantity still to be received, never below zero.
func (i POItem) Remaining() float64 {
	if rem := i.Quantity - i.ReceivedQty; rem > 0 {
		return rem
	}
	return 0
}

// PurchaseOrder is the vendor-facing order.
type PurchaseOrder struct {
	ID          string   `json:"id"`
	PONumber    string   `json:"poNumber"`
	Status      POStatus `json:"status"`
	Vendor      Vendor   `json:"vendor"`
	QuotationID string   `json:"quotationId,omitempty"`
	OrderDate   string   `json:"orderDate,omitempty"`
	TotalAmount float64  `json:"totalAmount,omitempty"`
	Items       []POItem `json:"items"`
}

// Pending reports whether the order still expects deliveries.
func (po PurchaseOrder) Pending() bool {
	return po.Status != POStatusClosed
}

// GRNItem is a received quantity against a PO line.
type GRNItem struct {
	ItemID      string  `json:"itemId"`
	ReceivedQty float64 `json:"receivedQty"`
}

// GoodsReceiptNote records a physical receipt against a PO.
type GoodsReceiptNote struct {
	ID              string    `json:"id,omitempty"`
	GRNNumber       string    `json:"grnNumber,omitempty"`
	PurchaseOrderID string    `json:"purchaseOrderId"`
	WarehouseID     string    `json:"warehouseId"`
	ReceivedDate    string    `json:"receivedDate,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Items           []GRNItem `json:"items"`
}

var (
	// ErrInvalidState occurs when action violates status workflow.
	ErrInvalidState = fmt.Errorf("procurement: %w", httpx.ErrInvalidState)
	// ErrNotFound wraps backend 404s from the repository's single-document reads.
	ErrNotFound = fmt.Errorf("procurement: %w", httpx.ErrNotFound)
)
