package complaint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintportal/internal/complaint"
)

func TestParseCategoryIsCaseInsensitive(t *testing.T) {
	for _, in := range []string{"hostel", "Hostel", "HOSTEL", "hOsTeL"} {
		cat, ok := complaint.ParseCategory(in)
		require.True(t, ok, "%q should parse", in)
		assert.Equal(t, complaint.CategoryHostel, cat)
	}

	_, ok := complaint.ParseCategory("canteen")
	assert.False(t, ok)
	_, ok = complaint.ParseCategory("")
	assert.False(t, ok)
}

func TestEveryCategoryHasADescriptor(t *testing.T) {
	for _, cat := range complaint.Categories() {
		d, ok := complaint.DescriptorFor(cat)
		require.True(t, ok, "%s must have a descriptor", cat)
		assert.Equal(t, cat, d.Category)
		assert.NotEmpty(t, d.Table)
	}
	assert.Len(t, complaint.Categories(), 6)
}

func TestDescriptorRequiredExtras(t *testing.T) {
	cases := map[complaint.Category][]string{
		complaint.CategoryHostel:         {"hostelNumber", "room"},
		complaint.CategoryAcademic:       {"department", "stream", "year"},
		complaint.CategoryAdministration: {"department", "stream", "year"},
		complaint.CategoryInfrastructure: {"landmark"},
		complaint.CategoryMedical:        {"stream", "year"},
		complaint.CategoryRagging:        {"stream", "year"},
	}
	for cat, want := range cases {
		d, ok := complaint.DescriptorFor(cat)
		require.True(t, ok)
		assert.Equal(t, want, d.RequiredExtras, "extras for %s", cat)
	}
}

func TestTypeVocabulary(t *testing.T) {
	hostel, _ := complaint.DescriptorFor(complaint.CategoryHostel)
	assert.True(t, hostel.RequiresType())
	assert.True(t, hostel.TypeAllowed("Maintenance"))
	assert.False(t, hostel.TypeAllowed("maintenance"), "vocabulary matching is exact")
	assert.False(t, hostel.TypeAllowed("Plumbing"))

	ragging, _ := complaint.DescriptorFor(complaint.CategoryRagging)
	assert.False(t, ragging.RequiresType())
	assert.True(t, ragging.TypeAllowed("anything"))
	assert.True(t, ragging.TypeAllowed(""))
}
