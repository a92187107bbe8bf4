package procurement

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

type memoryProcRepo struct {
	prs        map[string]PurchaseRequisition
	rfqs       map[string]RFQ
	quotations map[string]VendorQuotation
	pos        map[string]PurchaseOrder
	grns       []GoodsReceiptNote
	calls      []string
	nextID     int
}

func newMemoryProcRepo() *memoryProcRepo {
	return &memoryProcRepo{
		prs:        make(map[string]PurchaseRequisition),
		rfqs:       make(map[string]RFQ),
		quotations: make(map[string]VendorQuotation),
		pos:        make(map[string]PurchaseOrder),
	}
}

func (r *memoryProcRepo) id(prefix string) string {
	r.nextID++
	return prefix + "-" + strconv.Itoa(r.nextID)
}

func (r *memoryProcRepo) ListPRs(ctx context.Context, query url.Values) ([]PurchaseRequisition, error) {
	out := make([]PurchaseRequisition, 0, len(r.prs))
	for _, pr := range r.prs {
		out = append(out, pr)
	}
	return out, nil
}

func (r *memoryProcRepo) GetPR(ctx context.Context, id string) (PurchaseRequisition, error) {
	pr, ok := r.prs[id]
	if !ok {
		return PurchaseRequisition{}, ErrNotFound
	}
	return pr, nil
}

func (r *memoryProcRepo) CreatePR(ctx context.Context, input PRInput) (PurchaseRequisition, string, error) {
	r.calls = append(r.calls, "CreatePR")
	id := r.id("pr")
	pr := PurchaseRequisition{ID: id, PRNumber: "PR/" + id, Status: PRStatusDraft, RequestedBy: input.RequestedBy,
		RequestDate: input.RequestDate, Department: input.Department, Items: input.Items}
	r.prs[id] = pr
	return pr, "", nil
}

func (r *memoryProcRepo) UpdatePR(ctx context.Context, id string, input PRInput) (string, error) {
	r.calls = append(r.calls, "UpdatePR")
	pr := r.prs[id]
	pr.Department = input.Department
	pr.Items = input.Items
	r.prs[id] = pr
	return "", nil
}

func (r *memoryProcRepo) DeletePR(ctx context.Context, id string) (string, error) {
	r.calls = append(r.calls, "DeletePR")
	delete(r.prs, id)
	return "", nil
}

func (r *memoryProcRepo) SetPRStatus(ctx context.Context, id string, status PRStatus, note string) (string, error) {
	r.calls = append(r.calls, "SetPRStatus:"+string(status))
	pr := r.prs[id]
	pr.Status = status
	r.prs[id] = pr
	return "", nil
}

func (r *memoryProcRepo) ConvertPRToRFQ(ctx context.Context, id string, input ConvertInput) (RFQ, string, error) {
	r.calls = append(r.calls, "ConvertPRToRFQ")
	pr := r.prs[id]
	rfq := RFQ{ID: r.id("rfq"), PurchaseRequisitionID: id, Status: RFQStatusDraft}
	rfq.RFQNumber = "RFQ/" + rfq.ID
	for _, item := range pr.Items {
		rfq.Items = append(rfq.Items, RFQItem{ID: r.id("rfqi"), ItemName: item.ItemName, Quantity: item.Quantity})
	}
	r.rfqs[rfq.ID] = rfq
	return rfq, "RFQ created", nil
}

func (r *memoryProcRepo) ListRFQs(ctx context.Context, query url.Values) ([]RFQ, error) {
	out := make([]RFQ, 0, len(r.rfqs))
	for _, rfq := range r.rfqs {
		out = append(out, rfq)
	}
	return out, nil
}

func (r *memoryProcRepo) GetRFQ(ctx context.Context, id string) (RFQ, error) {
	rfq, ok := r.rfqs[id]
	if !ok {
		return RFQ{}, ErrNotFound
	}
	return rfq, nil
}

func (r *memoryProcRepo) SendRFQ(ctx context.Context, id string) (string, error) {
	r.calls = append(r.calls, "SendRFQ")
	rfq := r.rfqs[id]
	rfq.Status = RFQStatusSent
	r.rfqs[id] = rfq
	return "", nil
}

func (r *memoryProcRepo) ListQuotations(ctx context.Context, rfqID string) ([]VendorQuotation, error) {
	out := make([]VendorQuotation, 0)
	for i := 1; i <= r.nextID; i++ {
		if q, ok := r.quotations["q-"+strconv.Itoa(i)]; ok && q.RFQID == rfqID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryProcRepo) GetQuotation(ctx context.Context, id string) (VendorQuotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return VendorQuotation{}, ErrNotFound
	}
	return q, nil
}

func (r *memoryProcRepo) CreateQuotation(ctx context.Context, input QuotationInput) (VendorQuotation, string, error) {
	r.calls = append(r.calls, "CreateQuotation")
	q := VendorQuotation{ID: r.id("q"), RFQID: input.RFQID, Vendor: Vendor{ID: input.VendorID}, Status: QuotationStatusDraft, Items: input.Items}
	r.quotations[q.ID] = q
	return q, "", nil
}

func (r *memoryProcRepo) QuotationAction(ctx context.Context, id string, action Action) (string, error) {
	r.calls = append(r.calls, "QuotationAction:"+string(action))
	q := r.quotations[id]
	switch action {
	case ActionSubmit:
		q.Status = QuotationStatusSubmitted
	case ActionSelect:
		q.Status = QuotationStatusSelected
	case ActionReject:
		q.Status = QuotationStatusRejected
	}
	r.quotations[id] = q
	return "", nil
}

func (r *memoryProcRepo) ListPOs(ctx context.Context, query url.Values) ([]PurchaseOrder, error) {
	out := make([]PurchaseOrder, 0, len(r.pos))
	for i := 1; i <= r.nextID; i++ {
		if po, ok := r.pos["po-"+strconv.Itoa(i)]; ok {
			out = append(out, po)
		}
	}
	return out, nil
}

func (r *memoryProcRepo) GetPO(ctx context.Context, id string) (PurchaseOrder, error) {
	po, ok := r.pos[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	return po, nil
}

func (r *memoryProcRepo) CreatePO(ctx context.Context, input POInput) (PurchaseOrder, string, error) {
	r.calls = append(r.calls, "CreatePO")
	q := r.quotations[input.QuotationID]
	po := PurchaseOrder{ID: r.id("po"), Status: POStatusOpen, Vendor: q.Vendor, QuotationID: q.ID}
	po.PONumber = "PO/" + po.ID
	for _, item := range q.Items {
		po.Items = append(po.Items, POItem{ID: r.id("poi"), ItemName: item.ItemName, Quantity: item.QuotedQty, UnitPrice: item.UnitPrice})
	}
	r.pos[po.ID] = po
	return po, "", nil
}

func (r *memoryProcRepo) ListGRNs(ctx context.Context, query url.Values) ([]GoodsReceiptNote, error) {
	return r.grns, nil
}

func (r *memoryProcRepo) CreateGRN(ctx context.Context, grn GoodsReceiptNote) (GoodsReceiptNote, string, error) {
	r.calls = append(r.calls, "CreateGRN")
	grn.ID = r.id("grn")
	r.grns = append(r.grns, grn)
	return grn, "", nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestService() (*Service, *memoryProcRepo, *memoryAudit) {
	repo := newMemoryProcRepo()
	audit := &memoryAudit{}
	return NewService(repo, nil, audit, nil), repo, audit
}

func samplePRInput() PRInput {
	return PRInput{
		RequestDate: "2026-10-01",
		Department:  "Operations",
		Items:       []PRItem{{ItemID: "itm-1", ItemName: "Safety boots", Quantity: 12}},
	}
}

func TestRequisitionLifecycle(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()

	pr, msg, err := svc.CreatePR(ctx, samplePRInput())
	require.NoError(t, err)
	require.Equal(t, "Purchase requisition created", msg)
	require.Equal(t, PRStatusDraft, pr.Status)

	_, err = svc.ApprovePR(ctx, pr.ID, "")
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, httpx.ErrInvalidState)
	require.Equal(t, "Cannot approve requisition "+pr.PRNumber+" while it is draft", httpx.MessageFor(err))

	msg, err = svc.SubmitPR(ctx, pr.ID)
	require.NoError(t, err)
	require.Equal(t, "Purchase requisition submitted", msg)

	_, err = svc.UpdatePR(ctx, pr.ID, samplePRInput())
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.ApprovePR(ctx, pr.ID, "within budget")
	require.NoError(t, err)

	view, err := svc.GetPR(ctx, pr.ID)
	require.NoError(t, err)
	require.Equal(t, PRStatusApproved, view.Status)
	require.Equal(t, []Action{ActionConvertToRFQ}, view.Actions)

	_, err = svc.RejectPR(ctx, pr.ID, "")
	require.ErrorIs(t, err, ErrInvalidState)

	require.Equal(t, []string{"CreatePR", "SetPRStatus:SUBMITTED", "SetPRStatus:APPROVED"}, repo.calls)
	require.Len(t, audit.logs, 3)
	require.Equal(t, "PR_APPROVED", audit.logs[2].Action)
}

func TestCreatePRDropsEmptyItems(t *testing.T) {
	svc, repo, _ := newTestService()
	input := samplePRInput()
	input.Items = append(input.Items, PRItem{ItemName: "  "}, PRItem{ItemName: "Gloves", Quantity: 0})

	pr, _, err := svc.CreatePR(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, pr.Items, 1)

	input.Items = []PRItem{{ItemName: ""}}
	_, _, err = svc.CreatePR(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, []string{"CreatePR"}, repo.calls)
}

func TestDeletePROnlyInDraft(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	pr, _, err := svc.CreatePR(ctx, samplePRInput())
	require.NoError(t, err)
	_, err = svc.SubmitPR(ctx, pr.ID)
	require.NoError(t, err)

	_, err = svc.DeletePR(ctx, pr.ID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, repo.prs, pr.ID)
}

func TestConvertPRToRFQRequiresApproval(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	pr, _, err := svc.CreatePR(ctx, samplePRInput())
	require.NoError(t, err)

	_, _, err = svc.ConvertPRToRFQ(ctx, pr.ID, ConvertInput{VendorIDs: []string{"v-1"}})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.SubmitPR(ctx, pr.ID)
	require.NoError(t, err)
	_, err = svc.ApprovePR(ctx, pr.ID, "")
	require.NoError(t, err)

	_, _, err = svc.ConvertPRToRFQ(ctx, pr.ID, ConvertInput{})
	require.ErrorIs(t, err, httpx.ErrValidation)

	rfq, msg, err := svc.ConvertPRToRFQ(ctx, pr.ID, ConvertInput{VendorIDs: []string{"v-1", "v-2"}})
	require.NoError(t, err)
	require.Equal(t, "RFQ created", msg)
	require.Equal(t, pr.ID, rfq.PurchaseRequisitionID)
	require.Len(t, repo.rfqs, 1)
}

func seedQuotations(t *testing.T, repo *memoryProcRepo) (RFQ, []VendorQuotation) {
	t.Helper()
	rfq := RFQ{ID: "rfq-1", RFQNumber: "RFQ-001", Status: RFQStatusSent, Items: []RFQItem{
		{ID: "line-a", ItemName: "Cement", Quantity: 100},
		{ID: "line-b", ItemName: "Sand", Quantity: 2.5},
	}}
	repo.rfqs[rfq.ID] = rfq
	repo.nextID = 10
	quotes := []VendorQuotation{
		{ID: "q-1", RFQID: rfq.ID, Vendor: Vendor{ID: "v-1", Name: "Alpha"}, Status: QuotationStatusSubmitted,
			Items: []QuotationItem{
				{RFQItemID: "line-a", UnitPrice: 12, QuotedQty: 100, LineTotal: 1200},
				{RFQItemID: "line-b", UnitPrice: 400, QuotedQty: 2.5, LineTotal: 1000},
			},
			Subtotal: 2200, TotalAmount: 2200},
		{ID: "q-2", RFQID: rfq.ID, Vendor: Vendor{ID: "v-2", Name: "Beta"}, Status: QuotationStatusSubmitted,
			Items: []QuotationItem{
				{RFQItemID: "line-a", UnitPrice: 11.5, QuotedQty: 100, LineTotal: 1150},
			},
			Subtotal: 1150, TotalAmount: 1150},
	}
	for _, q := range quotes {
		repo.quotations[q.ID] = q
	}
	return rfq, quotes
}

func TestSelectQuotation(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	seedQuotations(t, repo)

	msg, err := svc.SelectQuotation(ctx, "q-1")
	require.NoError(t, err)
	require.Equal(t, "Quotation selected", msg)

	q, err := svc.GetQuotation(ctx, "q-1")
	require.NoError(t, err)
	require.Equal(t, QuotationStatusSelected, q.Status)
	require.Equal(t, []Action{ActionCreatePO}, q.Actions)

	_, err = svc.SelectQuotation(ctx, "q-1")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.SelectQuotation(ctx, "q-2")
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, httpx.MessageFor(err), "already awarded to alpha")

	require.Equal(t, []string{"QuotationAction:select"}, repo.calls)
}

func TestCreatePOFromQuotationRequiresSelection(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	seedQuotations(t, repo)

	_, _, err := svc.CreatePOFromQuotation(ctx, POInput{QuotationID: "q-2"})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.SelectQuotation(ctx, "q-2")
	require.NoError(t, err)
	po, _, err := svc.CreatePOFromQuotation(ctx, POInput{QuotationID: "q-2"})
	require.NoError(t, err)
	require.Equal(t, "q-2", po.QuotationID)
	require.Equal(t, "Beta", po.Vendor.Name)
}

func TestCreateQuotationRejectsClosedRFQ(t *testing.T) {
	svc, repo, _ := newTestService()
	rfq, _ := seedQuotations(t, repo)
	rfq.Status = RFQStatusClosed
	repo.rfqs[rfq.ID] = rfq

	input := QuotationInput{RFQID: rfq.ID, VendorID: "v-3", Items: []QuotationItem{{RFQItemID: "line-a", UnitPrice: 10, QuotedQty: 100}}}
	_, _, err := svc.CreateQuotation(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidState)

	input.Items[0].QuotedQty = 0
	_, _, err = svc.CreateQuotation(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)
}

func TestCompareBuildsGrid(t *testing.T) {
	svc, repo, _ := newTestService()
	seedQuotations(t, repo)

	cmp, err := svc.Compare(context.Background(), "rfq-1", language.English)
	require.NoError(t, err)
	require.Equal(t, "RFQ-001", cmp.RFQNumber)
	require.Len(t, cmp.Columns, 2)
	require.False(t, cmp.Columns[0].Lowest)
	require.True(t, cmp.Columns[1].Lowest)
	require.Equal(t, "2,200.00", cmp.Columns[0].Total)

	require.Len(t, cmp.Rows, 2)
	cement := cmp.Rows[0]
	require.Equal(t, "100", cement.Quantity)
	require.Equal(t, "12.00", cement.Cells[0].UnitPrice)
	require.Equal(t, "100", cement.Cells[0].QuotedQty)
	require.Equal(t, "1,200.00", cement.Cells[0].LineTotal)
	require.False(t, cement.Cells[0].Lowest)
	require.True(t, cement.Cells[1].Lowest)

	sand := cmp.Rows[1]
	require.Equal(t, "2.500", sand.Quantity)
	require.True(t, sand.Cells[0].Lowest)
	require.False(t, sand.Cells[1].Quoted)
	require.Equal(t, "-", sand.Cells[1].UnitPrice)
	require.Equal(t, "-", sand.Cells[1].QuotedQty)
	require.Equal(t, "2.500", sand.Cells[0].QuotedQty)
}

func TestCompareShowsPartialQuotedQuantity(t *testing.T) {
	rfq := RFQ{ID: "rfq-9", Items: []RFQItem{{ID: "line-a", ItemName: "Cement", Quantity: 100}}}
	quotes := []VendorQuotation{{ID: "q-9", Status: QuotationStatusSubmitted, Items: []QuotationItem{
		{RFQItemID: "line-a", UnitPrice: 10, QuotedQty: 60, LineTotal: 600},
	}}}

	cmp := buildComparison(rfq, quotes, language.English)
	require.Equal(t, "100", cmp.Rows[0].Quantity)
	cell := cmp.Rows[0].Cells[0]
	require.Equal(t, "60", cell.QuotedQty)
	require.Equal(t, "600.00", cell.LineTotal)
}

func seedPO(repo *memoryProcRepo) PurchaseOrder {
	po := PurchaseOrder{ID: "po-1", PONumber: "PO-001", Status: POStatusPartiallyReceived, Items: []POItem{
		{ID: "pol-1", ItemName: "Cement", Quantity: 10, ReceivedQty: 4},
		{ID: "pol-2", ItemName: "Sand", Quantity: 5, ReceivedQty: 7},
	}}
	repo.pos[po.ID] = po
	return po
}

func TestPrepareReceiptDefaultsToRemaining(t *testing.T) {
	svc, repo, _ := newTestService()
	seedPO(repo)

	draft, err := svc.PrepareReceipt(context.Background(), "po-1")
	require.NoError(t, err)
	require.Len(t, draft.Lines, 2)
	require.Equal(t, 6.0, draft.Lines[0].ReceivedQty)
	require.Equal(t, 6.0, draft.Lines[0].Remaining)
	require.Equal(t, 0.0, draft.Lines[1].ReceivedQty)
}

func TestCreateGRNFiltersZeroLines(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()
	seedPO(repo)

	_, _, err := svc.CreateGRN(ctx, "po-1", ReceiptInput{WarehouseID: "wh-1", Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 0},
		{ItemID: "pol-2", ReceivedQty: 0},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)

	grn, msg, err := svc.CreateGRN(ctx, "po-1", ReceiptInput{WarehouseID: "wh-1", Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 6},
		{ItemID: "pol-2", ReceivedQty: 0},
	}})
	require.NoError(t, err)
	require.Equal(t, "Goods receipt recorded", msg)
	require.Equal(t, "po-1", grn.PurchaseOrderID)
	require.Equal(t, []GRNItem{{ItemID: "pol-1", ReceivedQty: 6}}, grn.Items)
	require.Equal(t, []string{"CreateGRN"}, repo.calls)
	require.Equal(t, "GRN_CREATE", audit.logs[0].Action)
}

func TestCreateGRNRejectsOverReceipt(t *testing.T) {
	svc, repo, _ := newTestService()
	seedPO(repo)

	_, _, err := svc.CreateGRN(context.Background(), "po-1", ReceiptInput{WarehouseID: "wh-1", Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 7},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, _, err = svc.CreateGRN(context.Background(), "po-1", ReceiptInput{Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 1},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)
}

func TestCreateGRNSumsRepeatedItems(t *testing.T) {
	svc, repo, _ := newTestService()
	seedPO(repo)

	_, _, err := svc.CreateGRN(context.Background(), "po-1", ReceiptInput{WarehouseID: "wh-1", Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 6},
		{ItemID: "pol-1", ReceivedQty: 6},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)

	_, _, err = svc.CreateGRN(context.Background(), "po-1", ReceiptInput{WarehouseID: "wh-1", Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 2},
		{ItemID: "pol-1", ReceivedQty: 4},
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"CreateGRN"}, repo.calls)
}

func TestCreateGRNOnClosedPO(t *testing.T) {
	svc, repo, _ := newTestService()
	po := seedPO(repo)
	po.Status = POStatusClosed
	repo.pos[po.ID] = po

	_, _, err := svc.CreateGRN(context.Background(), po.ID, ReceiptInput{WarehouseID: "wh-1", Items: []GRNItem{
		{ItemID: "pol-1", ReceivedQty: 1},
	}})
	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	require.Equal(t, ActionReceive, stateErr.Action)
}

func TestPendingPOsExcludesClosed(t *testing.T) {
	svc, repo, _ := newTestService()
	seedPO(repo)
	repo.pos["po-2"] = PurchaseOrder{ID: "po-2", Status: POStatusClosed}
	repo.nextID = 2

	pending, err := svc.PendingPOs(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "po-1", pending[0].ID)
	require.Equal(t, []Action{ActionReceive}, pending[0].Actions)

	all, err := svc.ListPOs(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

type fakePDF struct {
	html string
}

func (f *fakePDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.7"), nil
}

func TestComparisonPDF(t *testing.T) {
	svc, repo, _ := newTestService()
	seedQuotations(t, repo)
	pdfClient := &fakePDF{}
	exporter, err := NewExporter(pdfClient)
	require.NoError(t, err)

	pdf, name, err := exporter.ComparisonPDF(context.Background(), svc, "rfq-1", language.English)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.7"), pdf)
	require.Equal(t, "comparison-RFQ-001.pdf", name)
	require.Contains(t, pdfClient.html, "Alpha")
	require.Contains(t, pdfClient.html, "1,150.00")
}

func TestActionTables(t *testing.T) {
	require.Equal(t, []Action{ActionSubmit, ActionEdit, ActionDelete}, PRActions(PRStatusDraft))
	require.Empty(t, PRActions(PRStatusRejected))
	require.Equal(t, []Action{ActionSend}, RFQActions(RFQStatusDraft))
	require.Empty(t, RFQActions(RFQStatusSent))
	require.Equal(t, []Action{ActionSelect, ActionReject}, QuotationActions(QuotationStatusSubmitted))
	require.Empty(t, POActions(PurchaseOrder{Status: POStatusCancelled}))

	actions := PRActions(PRStatusDraft)
	actions[0] = ActionApprove
	require.Equal(t, ActionSubmit, PRActions(PRStatusDraft)[0])
}
