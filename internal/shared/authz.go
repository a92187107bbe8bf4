package shared

// Permission strings granted by the backend at login.
const (
	PermMasterDataView   = "masterdata.view"
	PermMasterDataEdit   = "masterdata.edit"
	PermMasterDataDelete = "masterdata.delete"

	PermEmployeeView = "hr.employee.view"
	PermEmployeeEdit = "hr.employee.edit"

	PermAttendanceView = "hr.attendance.view"
	PermAttendanceEdit = "hr.attendance.edit"

	PermPayrollView    = "payroll.view"
	PermPayrollCompute = "payroll.compute"

	PermPRView    = "procurement.pr.view"
	PermPREdit    = "procurement.pr.edit"
	PermPRApprove = "procurement.pr.approve"

	PermRFQView = "procurement.rfq.view"
	PermRFQEdit = "procurement.rfq.edit"

	PermQuotationView   = "procurement.quotation.view"
	PermQuotationEdit   = "procurement.quotation.edit"
	PermQuotationSelect = "procurement.quotation.select"

	PermPOView = "procurement.po.view"
	PermPOEdit = "procurement.po.edit"

	PermGRNView = "procurement.grn.view"
	PermGRNEdit = "procurement.grn.edit"

	PermCompanySwitch = "company.switch"
)

// ProcurementScopes lists every procurement permission.
func ProcurementScopes() []string {
	return []string{
		PermPRView, PermPREdit, PermPRApprove,
		PermRFQView, PermRFQEdit,
		PermQuotationView, PermQuotationEdit, PermQuotationSelect,
		PermPOView, PermPOEdit,
		PermGRNView, PermGRNEdit,
	}
}

// HRScopes lists employee, attendance and payroll permissions.
func HRScopes() []string {
	return []string{
		PermEmployeeView, PermEmployeeEdit,
		PermAttendanceView, PermAttendanceEdit,
		PermPayrollView, PermPayrollCompute,
	}
}

// PermissionsFromSession returns the permissions granted at login.
func PermissionsFromSession(sess *Session) []string {
	var perms []string
	if ok, err := sess.GetJSON(SessionKeyPermissions, &perms); !ok || err != nil {
		return nil
	}
	return perms
}
