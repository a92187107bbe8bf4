package procurement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListPRs(ctx context.Context, query url.Values) ([]PurchaseRequisition, error)
	GetPR(ctx context.Context, id string) (PurchaseRequisition, error)
	CreatePR(ctx context.Context, input PRInput) (PurchaseRequisition, string, error)
	UpdatePR(ctx context.Context, id string, input PRInput) (string, error)
	DeletePR(ctx context.Context, id string) (string, error)
	SetPRStatus(ctx context.Context, id string, status PRStatus, note string) (string, error)
	ConvertPRToRFQ(ctx context.Context, id string, input ConvertInput) (RFQ, string, error)

	ListRFQs(ctx context.Context, query url.Values) ([]RFQ, error)
	GetRFQ(ctx context.Context, id string) (RFQ, error)
	SendRFQ(ctx context.Context, id string) (string, error)

	ListQuotations(ctx context.Context, rfqID string) ([]VendorQuotation, error)
	GetQuotation(ctx context.Context, id string) (VendorQuotation, error)
	CreateQuotation(ctx context.Context, input QuotationInput) (VendorQuotation, string, error)
	QuotationAction(ctx context.Context, id string, action Action) (string, error)

	ListPOs(ctx context.Context, query url.Values) ([]PurchaseOrder, error)
	GetPO(ctx context.Context, id string) (PurchaseOrder, error)
	CreatePO(ctx context.Context, input POInput) (PurchaseOrder, string, error)

	ListGRNs(ctx context.Context, query url.Values) ([]GoodsReceiptNote, error)
	CreateGRN(ctx context.Context, grn GoodsReceiptNote) (GoodsReceiptNote, string, error)
}

const (
	prPath        = "/purchase-requisitions"
	rfqPath       = "/rfqs"
	quotationPath = "/vendor-quotations"
	poPath        = "/purchase-orders"
	grnPath       = "/goods-receipt-notes"
)

// Repository implements RepositoryPort against the backend REST API.
type Repository struct {
	client *backend.Client
}

// NewRepository creates a new repository instance.
func NewRepository(client *backend.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) ListPRs(ctx context.Context, query url.Values) ([]PurchaseRequisition, error) {
	var prs []PurchaseRequisition
	err := r.client.List(ctx, prPath, query, &prs)
	return prs, err
}

func (r *Repository) GetPR(ctx context.Context, id string) (PurchaseRequisition, error) {
	var pr PurchaseRequisition
	err := r.client.Get(ctx, backend.PathEscape(prPath, id), nil, &pr)
	return pr, missing(err)
}

func (r *Repository) CreatePR(ctx context.Context, input PRInput) (PurchaseRequisition, string, error) {
	var pr PurchaseRequisition
	msg, err := r.client.Post(ctx, prPath, input, &pr)
	return pr, msg, err
}

func (r *Repository) UpdatePR(ctx context.Context, id string, input PRInput) (string, error) {
	return r.client.Patch(ctx, backend.PathEscape(prPath, id), input, nil)
}

func (r *Repository) DeletePR(ctx context.Context, id string) (string, error) {
	return r.client.Delete(ctx, backend.PathEscape(prPath, id), nil)
}

func (r *Repository) SetPRStatus(ctx context.Context, id string, status PRStatus, note string) (string, error) {
	body := map[string]string{"status": string(status)}
	if note != "" {
		body["note"] = note
	}
	return r.client.Patch(ctx, backend.PathEscape(prPath, id)+"/status", body, nil)
}

func (r *Repository) ConvertPRToRFQ(ctx context.Context, id string, input ConvertInput) (RFQ, string, error) {
	var rfq RFQ
	msg, err := r.client.Post(ctx, backend.PathEscape(prPath, id)+"/convert-to-rfq", input, &rfq)
	return rfq, msg, err
}

func (r *Repository) ListRFQs(ctx context.Context, query url.Values) ([]RFQ, error) {
	var rfqs []RFQ
	err := r.client.List(ctx, rfqPath, query, &rfqs)
	return rfqs, err
}

func (r *Repository) GetRFQ(ctx context.Context, id string) (RFQ, error) {
	var rfq RFQ
	err := r.client.Get(ctx, backend.PathEscape(rfqPath, id), nil, &rfq)
	return rfq, missing(err)
}

func (r *Repository) SendRFQ(ctx context.Context, id string) (string, error) {
	return r.client.Post(ctx, backend.PathEscape(rfqPath, id)+"/send", nil, nil)
}

func (r *Repository) ListQuotations(ctx context.Context, rfqID string) ([]VendorQuotation, error) {
	var quotations []VendorQuotation
	var query url.Values
	if rfqID != "" {
		query = url.Values{"rfqId": {rfqID}}
	}
	err := r.client.List(ctx, quotationPath, query, &quotations)
	return quotations, err
}

func (r *Repository) GetQuotation(ctx context.Context, id string) (VendorQuotation, error) {
	var q VendorQuotation
	err := r.client.Get(ctx, backend.PathEscape(quotationPath, id), nil, &q)
	return q, missing(err)
}

func (r *Repository) CreateQuotation(ctx context.Context, input QuotationInput) (VendorQuotation, string, error) {
	var q VendorQuotation
	msg, err := r.client.Post(ctx, quotationPath, input, &q)
	return q, msg, err
}

func (r *Repository) QuotationAction(ctx context.Context, id string, action Action) (string, error) {
	return r.client.Post(ctx, backend.PathEscape(quotationPath, id)+"/"+string(action), nil, nil)
}

func (r *Repository) ListPOs(ctx context.Context, query url.Values) ([]PurchaseOrder, error) {
	var pos []PurchaseOrder
	err := r.client.List(ctx, poPath, query, &pos)
	return pos, err
}

func (r *Repository) GetPO(ctx context.Context, id string) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.client.Get(ctx, backend.PathEscape(poPath, id), nil, &po)
	return po, missing(err)
}

func (r *Repository) CreatePO(ctx context.Context, input POInput) (PurchaseOrder, string, error) {
	var po PurchaseOrder
	msg, err := r.client.Post(ctx, poPath, input, &po)
	return po, msg, err
}

func (r *Repository) ListGRNs(ctx context.Context, query url.Values) ([]GoodsReceiptNote, error) {
	var grns []GoodsReceiptNote
	err := r.client.List(ctx, grnPath, query, &grns)
	return grns, err
}

func (r *Repository) CreateGRN(ctx context.Context, grn GoodsReceiptNote) (GoodsReceiptNote, string, error) {
	var created GoodsReceiptNote
	msg, err := r.client.Post(ctx, grnPath, grn, &created)
	return created, msg, err
}

var _ RepositoryPort = (*Repository)(nil)

// missing tags a backend 404 with ErrNotFound, keeping the backend error for
// its status and message.
func missing(err error) error {
	var be *backend.Error
	if errors.As(err, &be) && be.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
