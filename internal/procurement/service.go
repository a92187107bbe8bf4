package procurement

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates procurement flows. The backend owns every document;
// the service checks that an action fits the current status before asking.
type Service struct {
	repo      RepositoryPort
	approvals *shared.ApprovalRecorder
	audit     AuditPort
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs procurement service. approvals and audit may be nil.
func NewService(repo RepositoryPort, approvals *shared.ApprovalRecorder, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, approvals: approvals, audit: audit, validate: validator.New(), logger: logger}
}

// PRInput describes requisition creation and edits.
type PRInput struct {
	RequestedBy string   `json:"requestedBy"`
	RequestDate string   `json:"requestDate" validate:"required"`
	Department  string   `json:"department" validate:"required"`
	Notes       string   `json:"notes,omitempty"`
	Items       []PRItem `json:"items" validate:"required,min=1,dive"`
}

// ConvertInput carries the RFQ details chosen when converting a requisition.
type ConvertInput struct {
	VendorIDs []string `json:"vendorIds" validate:"required,min=1,dive,required"`
	DueDate   string   `json:"dueDate,omitempty"`
}

// QuotationInput records a vendor's prices for an RFQ.
type QuotationInput struct {
	RFQID    string          `json:"rfqId" validate:"required"`
	VendorID string          `json:"vendorId" validate:"required"`
	Items    []QuotationItem `json:"items" validate:"required,min=1"`
}

// POInput creates an order from a selected quotation.
type POInput struct {
	QuotationID  string `json:"quotationId" validate:"required"`
	OrderDate    string `json:"orderDate,omitempty"`
	ExpectedDate string `json:"expectedDate,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// PRView is a requisition with the actions its status offers.
type PRView struct {
	PurchaseRequisition
	Actions []Action `json:"actions"`
}

// RFQView is an RFQ with the actions its status offers.
type RFQView struct {
	RFQ
	Actions []Action `json:"actions"`
}

// QuotationView is a quotation with the actions its status offers.
type QuotationView struct {
	VendorQuotation
	Actions []Action `json:"actions"`
}

// POView is an order with the actions its status offers.
type POView struct {
	PurchaseOrder
	Actions []Action `json:"actions"`
}

// ListPRs lists requisitions.
func (s *Service) ListPRs(ctx context.Context, query url.Values) ([]PRView, error) {
	prs, err := s.repo.ListPRs(ctx, query)
	if err != nil {
		return nil, err
	}
	views := make([]PRView, 0, len(prs))
	for _, pr := range prs {
		views = append(views, PRView{PurchaseRequisition: pr, Actions: PRActions(pr.Status)})
	}
	return views, nil
}

// GetPR fetches a requisition.
func (s *Service) GetPR(ctx context.Context, id string) (PRView, error) {
	pr, err := s.repo.GetPR(ctx, id)
	if err != nil {
		return PRView{}, err
	}
	return PRView{PurchaseRequisition: pr, Actions: PRActions(pr.Status)}, nil
}

// CreatePR creates a DRAFT requisition.
func (s *Service) CreatePR(ctx context.Context, input PRInput) (PurchaseRequisition, string, error) {
	input, err := s.cleanPR(input)
	if err != nil {
		return PurchaseRequisition{}, "", err
	}
	pr, msg, err := s.repo.CreatePR(ctx, input)
	if err != nil {
		return PurchaseRequisition{}, msg, err
	}
	s.recordAudit(ctx, "PR_CREATE", "purchase_requisition", pr.ID, map[string]any{"number": pr.PRNumber})
	return pr, orDefault(msg, "Purchase requisition created"), nil
}

// UpdatePR edits a DRAFT requisition.
func (s *Service) UpdatePR(ctx context.Context, id string, input PRInput) (string, error) {
	pr, err := s.requirePR(ctx, id, ActionEdit)
	if err != nil {
		return "", err
	}
	input, err = s.cleanPR(input)
	if err != nil {
		return "", err
	}
	msg, err := s.repo.UpdatePR(ctx, pr.ID, input)
	if err != nil {
		return msg, err
	}
	return orDefault(msg, "Purchase requisition updated"), nil
}

// DeletePR removes a DRAFT requisition.
func (s *Service) DeletePR(ctx context.Context, id string) (string, error) {
	pr, err := s.requirePR(ctx, id, ActionDelete)
	if err != nil {
		return "", err
	}
	msg, err := s.repo.DeletePR(ctx, pr.ID)
	if err != nil {
		return msg, err
	}
	s.recordAudit(ctx, "PR_DELETE", "purchase_requisition", pr.ID, map[string]any{"number": pr.PRNumber})
	return orDefault(msg, "Purchase requisition deleted"), nil
}

// SubmitPR moves a requisition from DRAFT to SUBMITTED.
func (s *Service) SubmitPR(ctx context.Context, id string) (string, error) {
	return s.transitionPR(ctx, id, ActionSubmit, PRStatusSubmitted, shared.ApprovalSubmit, "")
}

// ApprovePR moves a requisition from SUBMITTED to APPROVED.
func (s *Service) ApprovePR(ctx context.Context, id, note string) (string, error) {
	return s.transitionPR(ctx, id, ActionApprove, PRStatusApproved, shared.ApprovalApprove, note)
}

// RejectPR moves a requisition from SUBMITTED to REJECTED.
func (s *Service) RejectPR(ctx context.Context, id, note string) (string, error) {
	return s.transitionPR(ctx, id, ActionReject, PRStatusRejected, shared.ApprovalReject, note)
}

// ConvertPRToRFQ turns an APPROVED requisition into an RFQ.
func (s *Service) ConvertPRToRFQ(ctx context.Context, id string, input ConvertInput) (RFQ, string, error) {
	pr, err := s.requirePR(ctx, id, ActionConvertToRFQ)
	if err != nil {
		return RFQ{}, "", err
	}
	if err := s.validate.Struct(input); err != nil {
		return RFQ{}, "", httpx.Invalid("Choose at least one vendor for the RFQ")
	}
	rfq, msg, err := s.repo.ConvertPRToRFQ(ctx, pr.ID, input)
	if err != nil {
		return RFQ{}, msg, err
	}
	s.recordAudit(ctx, "PR_CONVERT", "purchase_requisition", pr.ID, map[string]any{"number": pr.PRNumber, "rfq": rfq.ID})
	return rfq, orDefault(msg, "RFQ created from "+pr.PRNumber), nil
}

// ListRFQs lists RFQs.
func (s *Service) ListRFQs(ctx context.Context, query url.Values) ([]RFQView, error) {
	rfqs, err := s.repo.ListRFQs(ctx, query)
	if err != nil {
		return nil, err
	}
	views := make([]RFQView, 0, len(rfqs))
	for _, rfq := range rfqs {
		views = append(views, RFQView{RFQ: rfq, Actions: RFQActions(rfq.Status)})
	}
	return views, nil
}

// GetRFQ fetches an RFQ.
func (s *Service) GetRFQ(ctx context.Context, id string) (RFQView, error) {
	rfq, err := s.repo.GetRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	return RFQView{RFQ: rfq, Actions: RFQActions(rfq.Status)}, nil
}

// SendRFQ sends a DRAFT RFQ to its vendors.
func (s *Service) SendRFQ(ctx context.Context, id string) (string, error) {
	rfq, err := s.repo.GetRFQ(ctx, id)
	if err != nil {
		return "", err
	}
	if !allowed(RFQActions(rfq.Status), ActionSend) {
		return "", stateError("RFQ", rfq.RFQNumber, ActionSend, string(rfq.Status))
	}
	msg, err := s.repo.SendRFQ(ctx, rfq.ID)
	if err != nil {
		return msg, err
	}
	s.recordAudit(ctx, "RFQ_SEND", "rfq", rfq.ID, map[string]any{"number": rfq.RFQNumber})
	return orDefault(msg, "RFQ sent"), nil
}

// ListQuotations lists the quotations received for an RFQ.
func (s *Service) ListQuotations(ctx context.Context, rfqID string) ([]QuotationView, error) {
	quotations, err := s.repo.ListQuotations(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	views := make([]QuotationView, 0, len(quotations))
	for _, q := range quotations {
		views = append(views, QuotationView{VendorQuotation: q, Actions: QuotationActions(q.Status)})
	}
	return views, nil
}

// GetQuotation fetches a quotation.
func (s *Service) GetQuotation(ctx context.Context, id string) (QuotationView, error) {
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return QuotationView{}, err
	}
	return QuotationView{VendorQuotation: q, Actions: QuotationActions(q.Status)}, nil
}

// CreateQuotation records a vendor's prices against an open RFQ.
func (s *Service) CreateQuotation(ctx context.Context, input QuotationInput) (VendorQuotation, string, error) {
	if err := s.validate.Struct(input); err != nil {
		return VendorQuotation{}, "", httpx.Invalid("RFQ, vendor and at least one priced item are required")
	}
	for _, item := range input.Items {
		if item.RFQItemID == "" || item.UnitPrice < 0 || item.QuotedQty <= 0 {
			return VendorQuotation{}, "", httpx.Invalid("Every quoted item needs a line, a price and a quantity")
		}
	}
	rfq, err := s.repo.GetRFQ(ctx, input.RFQID)
	if err != nil {
		return VendorQuotation{}, "", err
	}
	if rfq.Status == RFQStatusClosed {
		return VendorQuotation{}, "", stateError("RFQ", rfq.RFQNumber, ActionSubmit, string(rfq.Status))
	}
	q, msg, err := s.repo.CreateQuotation(ctx, input)
	if err != nil {
		return VendorQuotation{}, msg, err
	}
	return q, orDefault(msg, "Quotation recorded"), nil
}

// SubmitQuotation moves a quotation from DRAFT to SUBMITTED.
func (s *Service) SubmitQuotation(ctx context.Context, id string) (string, error) {
	return s.quotationAction(ctx, id, ActionSubmit, shared.ApprovalSubmit)
}

// SelectQuotation picks a SUBMITTED quotation as the RFQ winner. An RFQ has
// at most one selected quotation.
func (s *Service) SelectQuotation(ctx context.Context, id string) (string, error) {
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return "", err
	}
	if !allowed(QuotationActions(q.Status), ActionSelect) {
		return "", stateError("quotation", quotationLabel(q), ActionSelect, string(q.Status))
	}
	siblings, err := s.repo.ListQuotations(ctx, q.RFQID)
	if err != nil {
		return "", err
	}
	for _, other := range siblings {
		if other.ID != q.ID && other.Status == QuotationStatusSelected {
			return "", stateError("quotation", quotationLabel(q), ActionSelect, "already awarded to "+other.Vendor.Name)
		}
	}
	return s.applyQuotationAction(ctx, q, ActionSelect, shared.ApprovalSelect)
}

// RejectQuotation rejects a SUBMITTED quotation.
func (s *Service) RejectQuotation(ctx context.Context, id string) (string, error) {
	return s.quotationAction(ctx, id, ActionReject, shared.ApprovalReject)
}

// CreatePOFromQuotation creates a purchase order from a SELECTED quotation.
func (s *Service) CreatePOFromQuotation(ctx context.Context, input POInput) (PurchaseOrder, string, error) {
	if err := s.validate.Struct(input); err != nil {
		return PurchaseOrder{}, "", httpx.Invalid("Select a quotation to order from")
	}
	q, err := s.repo.GetQuotation(ctx, input.QuotationID)
	if err != nil {
		return PurchaseOrder{}, "", err
	}
	if !allowed(QuotationActions(q.Status), ActionCreatePO) {
		return PurchaseOrder{}, "", stateError("quotation", quotationLabel(q), ActionCreatePO, string(q.Status))
	}
	po, msg, err := s.repo.CreatePO(ctx, input)
	if err != nil {
		return PurchaseOrder{}, msg, err
	}
	s.recordAudit(ctx, "PO_CREATE", "purchase_order", po.ID, map[string]any{"number": po.PONumber, "quotation": q.ID})
	return po, orDefault(msg, "Purchase order created"), nil
}

// ListPOs lists purchase orders.
func (s *Service) ListPOs(ctx context.Context, query url.Values) ([]POView, error) {
	pos, err := s.repo.ListPOs(ctx, query)
	if err != nil {
		return nil, err
	}
	return poViews(pos, false), nil
}

// PendingPOs lists purchase orders that are not CLOSED.
func (s *Service) PendingPOs(ctx context.Context, query url.Values) ([]POView, error) {
	pos, err := s.repo.ListPOs(ctx, query)
	if err != nil {
		return nil, err
	}
	return poViews(pos, true), nil
}

// GetPO fetches a purchase order.
func (s *Service) GetPO(ctx context.Context, id string) (POView, error) {
	po, err := s.repo.GetPO(ctx, id)
	if err != nil {
		return POView{}, err
	}
	return POView{PurchaseOrder: po, Actions: POActions(po)}, nil
}

// ListGRNs lists goods receipts.
func (s *Service) ListGRNs(ctx context.Context, query url.Values) ([]GoodsReceiptNote, error) {
	grns, err := s.repo.ListGRNs(ctx, query)
	if err != nil {
		return nil, err
	}
	if grns == nil {
		grns = []GoodsReceiptNote{}
	}
	return grns, nil
}

// History returns the approval trail recorded for a document.
func (s *Service) History(ctx context.Context, module, id string) ([]shared.ApprovalLog, error) {
	if s.approvals == nil {
		return []shared.ApprovalLog{}, nil
	}
	return s.approvals.List(ctx, module, shared.ApprovalRef(module, id))
}

func (s *Service) requirePR(ctx context.Context, id string, action Action) (PurchaseRequisition, error) {
	pr, err := s.repo.GetPR(ctx, id)
	if err != nil {
		return PurchaseRequisition{}, err
	}
	if !allowed(PRActions(pr.Status), action) {
		return PurchaseRequisition{}, stateError("requisition", pr.PRNumber, action, string(pr.Status))
	}
	return pr, nil
}

func (s *Service) transitionPR(ctx context.Context, id string, action Action, target PRStatus, approval shared.ApprovalAction, note string) (string, error) {
	pr, err := s.requirePR(ctx, id, action)
	if err != nil {
		return "", err
	}
	msg, err := s.repo.SetPRStatus(ctx, pr.ID, target, strings.TrimSpace(note))
	if err != nil {
		return msg, err
	}
	s.recordApproval(ctx, moduleRequisition, pr.ID, approval, pr.PRNumber+" "+strings.ToLower(string(target)), note)
	s.recordAudit(ctx, "PR_"+string(target), "purchase_requisition", pr.ID, map[string]any{"number": pr.PRNumber, "from": pr.Status})
	return orDefault(msg, "Purchase requisition "+strings.ToLower(string(target))), nil
}

func (s *Service) quotationAction(ctx context.Context, id string, action Action, approval shared.ApprovalAction) (string, error) {
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return "", err
	}
	if !allowed(QuotationActions(q.Status), action) {
		return "", stateError("quotation", quotationLabel(q), action, string(q.Status))
	}
	return s.applyQuotationAction(ctx, q, action, approval)
}

func (s *Service) applyQuotationAction(ctx context.Context, q VendorQuotation, action Action, approval shared.ApprovalAction) (string, error) {
	msg, err := s.repo.QuotationAction(ctx, q.ID, action)
	if err != nil {
		return msg, err
	}
	s.recordApproval(ctx, moduleQuotation, q.ID, approval, quotationLabel(q)+" "+string(action), "")
	s.recordAudit(ctx, "QUOTATION_"+strings.ToUpper(string(action)), "vendor_quotation", q.ID, map[string]any{"rfq": q.RFQID, "vendor": q.Vendor.ID})
	return orDefault(msg, "Quotation "+pastTense(action)), nil
}

func (s *Service) cleanPR(input PRInput) (PRInput, error) {
	input.Department = strings.TrimSpace(input.Department)
	input.RequestDate = strings.TrimSpace(input.RequestDate)
	input.Notes = strings.TrimSpace(input.Notes)
	items := make([]PRItem, 0, len(input.Items))
	for _, item := range input.Items {
		item.ItemID = strings.TrimSpace(item.ItemID)
		item.ItemName = strings.TrimSpace(item.ItemName)
		if (item.ItemID == "" && item.ItemName == "") || item.Quantity <= 0 {
			continue
		}
		items = append(items, item)
	}
	input.Items = items
	if err := s.validate.Struct(input); err != nil {
		return PRInput{}, httpx.Invalid("Department, request date and at least one item with a quantity are required")
	}
	return input, nil
}

const (
	moduleRequisition = "PR"
	moduleQuotation   = "QUOTATION"
)

func (s *Service) recordApproval(ctx context.Context, module, id string, action shared.ApprovalAction, summary, note string) {
	if s.approvals == nil {
		return
	}
	if note != "" {
		summary += ": " + note
	}
	err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  module,
		RefID:   shared.ApprovalRef(module, id),
		ActorID: shared.SessionFromContext(ctx).User(),
		Action:  action,
		Note:    summary,
	})
	if err != nil {
		s.logger.Warn("approval record", slog.String("module", module), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action, entity, id string, meta map[string]any) {
	if s.audit == nil || id == "" {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditFromContext(ctx, action, entity, id, meta)); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func poViews(pos []PurchaseOrder, pendingOnly bool) []POView {
	views := make([]POView, 0, len(pos))
	for _, po := range pos {
		if pendingOnly && !po.Pending() {
			continue
		}
		views = append(views, POView{PurchaseOrder: po, Actions: POActions(po)})
	}
	return views
}

func quotationLabel(q VendorQuotation) string {
	if q.QuotationNumber != "" {
		return q.QuotationNumber
	}
	if q.Vendor.Name != "" {
		return "from " + q.Vendor.Name
	}
	return q.ID
}

func pastTense(action Action) string {
	switch action {
	case ActionSubmit:
		return "submitted"
	case ActionSelect:
		return "selected"
	case ActionReject:
		return "rejected"
	default:
		return string(action)
	}
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
