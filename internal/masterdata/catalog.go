package masterdata

import (
	"sort"

	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// FallbackMode says how per-item calls run when a resource has no bulk endpoint.
type FallbackMode string

const (
	FallbackSequential FallbackMode = "sequential"
	FallbackParallel   FallbackMode = "parallel"
)

// Resource describes one master-data entity served by the backend.
type Resource struct {
	Name       string       `json:"name"`
	Label      string       `json:"label"`
	Plural     string       `json:"plural"`
	Path       string       `json:"path"`
	Required   []string     `json:"required"`
	Bulk       bool         `json:"bulk"`
	Fallback   FallbackMode `json:"fallback,omitempty"`
	ViewPerm   string       `json:"-"`
	EditPerm   string       `json:"-"`
	DeletePerm string       `json:"-"`
}

// Catalog indexes resources by name.
type Catalog struct {
	byName map[string]Resource
}

// NewCatalog builds a Catalog. Later resources replace earlier ones of the same name.
func NewCatalog(resources ...Resource) *Catalog {
	c := &Catalog{byName: make(map[string]Resource, len(resources))}
	for _, res := range resources {
		if res.Path == "" {
			res.Path = "/" + res.Name
		}
		if res.Plural == "" {
			res.Plural = res.Name
		}
		if !res.Bulk && res.Fallback == "" {
			res.Fallback = FallbackSequential
		}
		c.byName[res.Name] = res
	}
	return c
}

// Lookup returns the resource named name.
func (c *Catalog) Lookup(name string) (Resource, bool) {
	res, ok := c.byName[name]
	return res, ok
}

// All returns every resource ordered by name.
func (c *Catalog) All() []Resource {
	out := make([]Resource, 0, len(c.byName))
	for _, res := range c.byName {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func master(name, label, plural string, required ...string) Resource {
	return Resource{
		Name:       name,
		Label:      label,
		Plural:     plural,
		Required:   required,
		Bulk:       true,
		ViewPerm:   shared.PermMasterDataView,
		EditPerm:   shared.PermMasterDataEdit,
		DeletePerm: shared.PermMasterDataDelete,
	}
}

// MasterDataCatalog lists the reference tables under /masterdata.
func MasterDataCatalog() *Catalog {
	companyGroups := master("company-groups", "Company group", "company groups", "name")
	companyGroups.Bulk = false
	companyGroups.Fallback = FallbackSequential

	return NewCatalog(
		master("banks", "Bank", "banks", "name"),
		master("cities", "City", "cities", "name"),
		master("branches", "Branch", "branches", "code", "name"),
		master("divisions", "Division", "divisions", "name"),
		master("departments", "Department", "departments", "name"),
		master("genders", "Gender", "genders", "name"),
		master("colors", "Color", "colors", "name"),
		master("allocations", "Allocation", "allocations", "name"),
		master("qualifications", "Qualification", "qualifications", "name"),
		master("designations", "Designation", "designations", "name"),
		master("grades", "Grade", "grades", "name"),
		master("religions", "Religion", "religions", "name"),
		master("countries", "Country", "countries", "code", "name"),
		master("states", "State", "states", "name", "countryId"),
		master("currencies", "Currency", "currencies", "code", "name"),
		master("tax-slabs", "Tax slab", "tax slabs", "name", "rate"),
		master("social-security-institutions", "Social security institution", "social security institutions", "name"),
		companyGroups,
		master("leave-types", "Leave type", "leave types", "name"),
		master("shifts", "Shift", "shifts", "name", "startTime", "endTime"),
		master("holidays", "Holiday", "holidays", "name", "date"),
		master("employment-types", "Employment type", "employment types", "name"),
		master("marital-statuses", "Marital status", "marital statuses", "name"),
		master("blood-groups", "Blood group", "blood groups", "name"),
		master("nationalities", "Nationality", "nationalities", "name"),
		master("warehouses", "Warehouse", "warehouses", "code", "name"),
		master("units", "Unit", "units", "code", "name"),
		master("item-categories", "Item category", "item categories", "name"),
		master("vendors", "Vendor", "vendors", "code", "name"),
		master("cost-centers", "Cost center", "cost centers", "code", "name"),
	)
}

// HRCatalog lists the employee records under /hr.
func HRCatalog() *Catalog {
	return NewCatalog(
		Resource{
			Name:       "employees",
			Label:      "Employee",
			Plural:     "employees",
			Required:   []string{"employeeCode", "firstName", "departmentId"},
			Bulk:       true,
			ViewPerm:   shared.PermEmployeeView,
			EditPerm:   shared.PermEmployeeEdit,
			DeletePerm: shared.PermEmployeeEdit,
		},
		Resource{
			Name:       "attendance",
			Label:      "Attendance record",
			Plural:     "attendance records",
			Path:       "/attendances",
			Required:   []string{"employeeId", "date", "status"},
			Bulk:       false,
			Fallback:   FallbackParallel,
			ViewPerm:   shared.PermAttendanceView,
			EditPerm:   shared.PermAttendanceEdit,
			DeletePerm: shared.PermAttendanceEdit,
		},
	)
}
