package procurement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/rbac"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

func newTestRouter(t *testing.T, svc *Service, perms ...string) http.Handler {
	t.Helper()
	exporter, err := NewExporter(&fakePDF{})
	require.NoError(t, err)

	sess := &shared.Session{ID: "s"}
	sess.SetUser("u-1")
	require.NoError(t, sess.SetJSON(shared.SessionKeyPermissions, perms))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(shared.ContextWithCompany(ctx, "c-1")))
		})
	})
	r.Route("/procurement", NewHandler(nil, svc, exporter, rbac.Middleware{Service: rbac.NewService(nil)}).MountRoutes)
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, httpx.ActionResult) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out httpx.ActionResult
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHandlerGoodsReceipt(t *testing.T) {
	svc, repo, _ := newTestService()
	seedPO(repo)

	viewer := newTestRouter(t, svc, shared.PermGRNView)
	rec, _ := serve(t, viewer, http.MethodGet, "/procurement/goods-receipts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = serve(t, viewer, http.MethodPost, "/procurement/goods-receipts/po-1", `{"warehouseId":"wh-1","items":[{"itemId":"pol-1","receivedQty":1}]}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	clerk := newTestRouter(t, svc, shared.PermGRNEdit)
	rec, out := serve(t, clerk, http.MethodGet, "/procurement/goods-receipts/new/po-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, out.Status)

	rec, out = serve(t, clerk, http.MethodPost, "/procurement/goods-receipts/po-1", `{"warehouseId":"wh-1","items":[{"itemId":"pol-1","receivedQty":0}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, out.Status)
	require.Empty(t, repo.calls)

	rec, out = serve(t, clerk, http.MethodPost, "/procurement/goods-receipts/po-1", `{"warehouseId":"wh-1","items":[{"itemId":"pol-1","receivedQty":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Goods receipt recorded", out.Message)
	require.Equal(t, []string{"CreateGRN"}, repo.calls)
}

func TestHandlerRequisitionApprovalNeedsApprover(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.prs["pr-1"] = PurchaseRequisition{ID: "pr-1", Status: PRStatusSubmitted}

	editor := newTestRouter(t, svc, shared.PermPRView, shared.PermPREdit)
	rec, _ := serve(t, editor, http.MethodPost, "/procurement/purchase-requisitions/pr-1/approve", `{}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, out := serve(t, editor, http.MethodPost, "/procurement/purchase-requisitions/pr-1/submit", `{}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, out.Status)

	approver := newTestRouter(t, svc, shared.PermPRApprove)
	rec, out = serve(t, approver, http.MethodPost, "/procurement/purchase-requisitions/pr-1/approve", `{"note":"ok"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Purchase requisition approved", out.Message)
	require.Equal(t, PRStatusApproved, repo.prs["pr-1"].Status)
}

func TestHandlerComparisonPDF(t *testing.T) {
	svc, repo, _ := newTestService()
	seedQuotations(t, repo)

	h := newTestRouter(t, svc, shared.PermRFQView, shared.PermQuotationView)
	rec, _ := serve(t, h, http.MethodGet, "/procurement/rfqs/rfq-1/comparison.pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "comparison-RFQ-001.pdf")
}
