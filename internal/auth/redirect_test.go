package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRedirect(t *testing.T) {
	r := NewRedirector("https", "odyssey.test", "hr")

	cases := []struct {
		name      string
		callback  string
		subdomain string
		wantSub   string
		wantPath  string
		wantURL   string
	}{
		{"dashboard rewrite", "/dashboard/foo", "", "hr", "/foo", "https://hr.odyssey.test/foo"},
		{"dashboard root", "/dashboard", "", "hr", "/", "https://hr.odyssey.test/"},
		{"empty callback", "", "", "hr", "/", "https://hr.odyssey.test/"},
		{"app segment", "/erp/purchase-orders?status=OPEN", "", "erp", "/purchase-orders", "https://erp.odyssey.test/purchase-orders?status=OPEN"},
		{"explicit subdomain", "/payroll/runs", "payroll", "payroll", "/runs", "https://payroll.odyssey.test/runs"},
		{"explicit subdomain keeps foreign path", "/employees", "erp", "erp", "/employees", "https://erp.odyssey.test/employees"},
		{"unknown explicit subdomain", "/hr/employees", "evil", "hr", "/employees", "https://hr.odyssey.test/employees"},
		{"unknown first segment", "/reports/daily", "", "hr", "/reports/daily", "https://hr.odyssey.test/reports/daily"},
		{"absolute url rejected", "https://evil.example/phish", "", "hr", "/", "https://hr.odyssey.test/"},
		{"protocol relative rejected", "//evil.example/x", "", "hr", "/", "https://hr.odyssey.test/"},
		{"prefix is a whole segment", "/hrm/x", "", "hr", "/hrm/x", "https://hr.odyssey.test/hrm/x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.callback, tc.subdomain)
			require.Equal(t, tc.wantSub, got.Subdomain)
			require.Equal(t, tc.wantPath, got.Path)
			require.Equal(t, tc.wantURL, got.URL)
		})
	}
}

func TestResolveRedirectHonoursDefault(t *testing.T) {
	r := NewRedirector("http", "localhost:3000", "erp")
	got := r.Resolve("/dashboard/x", "")
	require.Equal(t, "erp", got.Subdomain)
	require.Equal(t, "/x", got.Path)
	require.Equal(t, "http://erp.localhost:3000/x", got.URL)
}
