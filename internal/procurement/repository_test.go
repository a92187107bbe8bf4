package procurement

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

func TestRepositoryMapsBackendNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/purchase-orders/po1" {
			_, _ = w.Write([]byte(`{"id":"po1","poNumber":"PO-1","status":"OPEN","items":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":false,"message":"Purchase order not found"}`))
	}))
	defer srv.Close()

	repo := NewRepository(backend.NewClient(srv.URL, time.Second, nil, nil))
	ctx := context.Background()

	po, err := repo.GetPO(ctx, "po1")
	require.NoError(t, err)
	require.Equal(t, "PO-1", po.PONumber)

	_, err = repo.GetPO(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, http.StatusNotFound, httpx.StatusFor(err))
	require.Equal(t, "Purchase order not found", httpx.MessageFor(err))

	_, err = repo.GetPR(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = repo.GetRFQ(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetQuotation(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
