package rbac

import "github.com/odyssey-erp/odyssey-hr/internal/shared"

// RoutePermission ties a path prefix to the permissions that open it. Holding
// any one of Permissions is enough.
type RoutePermission struct {
	Prefix      string   `json:"prefix"`
	Permissions []string `json:"permissions"`
}

// RoutePermissions is the console's static route map.
var RoutePermissions = map[string][]string{
	"/masterdata":                        {shared.PermMasterDataView},
	"/hr":                                shared.HRScopes(),
	"/hr/employees":                      {shared.PermEmployeeView},
	"/hr/attendance":                     {shared.PermAttendanceView},
	"/payroll":                           {shared.PermPayrollView},
	"/procurement":                       shared.ProcurementScopes(),
	"/procurement/purchase-requisitions": {shared.PermPRView},
	"/procurement/rfqs":                  {shared.PermRFQView},
	"/procurement/quotations":            {shared.PermQuotationView},
	"/procurement/purchase-orders":       {shared.PermPOView},
	"/procurement/goods-receipts":        {shared.PermGRNView},
}
