package complaint

import "strings"

// Category is one of the six fixed complaint domains. Membership is
// structural: each category persists to its own table.
type Category string

const (
	CategoryHostel         Category = "Hostel"
	CategoryAcademic       Category = "Academic"
	CategoryAdministration Category = "Administration"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryMedical        Category = "Medical"
	CategoryRagging        Category = "Ragging"
)

// Descriptor captures everything category-specific: the backing table, the
// extra fields a submission must carry, and the complaint-type vocabulary.
// Adding a category means adding a row here plus a migration, not a handler.
type Descriptor struct {
	Category       Category
	Table          string
	RequiredExtras []string
	ComplaintTypes []string
}

var descriptors = map[Category]Descriptor{
	CategoryHostel: {
		Category:       CategoryHostel,
		Table:          "hostel_complaints",
		RequiredExtras: []string{"hostelNumber", "room"},
		ComplaintTypes: []string{"Maintenance", "Hygiene", "Security", "Mess", "Bathroom", "Room", "Noise", "Other"},
	},
	CategoryAcademic: {
		Category:       CategoryAcademic,
		Table:          "academic_complaints",
		RequiredExtras: []string{"department", "stream", "year"},
		ComplaintTypes: []string{"Faculty", "Timetable", "Course", "Other"},
	},
	CategoryAdministration: {
		Category:       CategoryAdministration,
		Table:          "administration_complaints",
		RequiredExtras: []string{"department", "stream", "year"},
		ComplaintTypes: []string{"Documents", "Accounts", "Scholarship", "Details", "Other"},
	},
	CategoryInfrastructure: {
		Category:       CategoryInfrastructure,
		Table:          "infrastructure_complaints",
		RequiredExtras: []string{"landmark"},
		ComplaintTypes: []string{"Electricity", "Water", "Internet", "Bus", "Classroom", "Library", "Sports", "Lab", "Other"},
	},
	CategoryMedical: {
		Category:       CategoryMedical,
		Table:          "medical_complaints",
		RequiredExtras: []string{"stream", "year"},
		ComplaintTypes: []string{"Doctor", "Medicine", "Ambulance", "Other"},
	},
	// Ragging complaints carry no type vocabulary; any report is taken as-is.
	CategoryRagging: {
		Category:       CategoryRagging,
		Table:          "ragging_complaints",
		RequiredExtras: []string{"stream", "year"},
	},
}

// Categories lists all known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryHostel,
		CategoryAcademic,
		CategoryAdministration,
		CategoryInfrastructure,
		CategoryMedical,
		CategoryRagging,
	}
}

// ParseCategory resolves a path parameter to a category, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, cat := range Categories() {
		if strings.EqualFold(s, string(cat)) {
			return cat, true
		}
	}
	return "", false
}

// DescriptorFor returns the descriptor for a category.
func DescriptorFor(cat Category) (Descriptor, bool) {
	d, ok := descriptors[cat]
	return d, ok
}

// TypeAllowed reports whether a complaint type belongs to the category's
// vocabulary. Categories without a vocabulary accept anything, including an
// empty type.
func (d Descriptor) TypeAllowed(complainType string) bool {
	if len(d.ComplaintTypes) == 0 {
		return true
	}
	for _, t := range d.ComplaintTypes {
		if t == complainType {
			return true
		}
	}
	return false
}

// RequiresType reports whether the category mandates a complaint type.
func (d Descriptor) RequiresType() bool {
	return len(d.ComplaintTypes) > 0
}

// extraValue reads a category-specific field out of a submission by name.
func extraValue(sub Submission, field string) string {
	switch field {
	case "hostelNumber":
		return sub.HostelNumber
	case "room":
		return sub.Room
	case "department":
		return sub.Department
	case "stream":
		return sub.Stream
	case "year":
		return sub.Year
	case "landmark":
		return sub.Landmark
	}
	return ""
}
