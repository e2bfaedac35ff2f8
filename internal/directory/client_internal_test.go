package directory

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
)

func entryWith(attrs map[string]string) *ldap.Entry {
	entry := &ldap.Entry{DN: "uid=test,ou=Students,dc=dev,dc=com"}
	for name, value := range attrs {
		entry.Attributes = append(entry.Attributes, &ldap.EntryAttribute{
			Name:   name,
			Values: []string{value},
		})
	}
	return entry
}

func TestTransformEntryMapsAttributes(t *testing.T) {
	rec := transformEntry(entryWith(map[string]string{
		"uid":              "2211201099",
		"cn":               "Asha",
		"sn":               "Verma",
		"mail":             "asha@institute.edu",
		"mobile":           "9876543210",
		"departmentNumber": "CSE",
		"roomNumber":       "H5-214",
		"ou":               "B.Tech",
		"postalAddress":    "12 College Road",
	}))

	assert.Equal(t, "2211201099", rec.UID)
	assert.Equal(t, "Asha", rec.Name)
	assert.Equal(t, "Verma", rec.LastName)
	assert.Equal(t, "asha@institute.edu", rec.Email)
	assert.Equal(t, "CSE", rec.Department)
	assert.Equal(t, "H5-214", rec.Room)
	assert.Equal(t, "H5", rec.Hostel, "hostel is the room prefix before the dash")
	assert.Equal(t, "B.Tech", rec.Stream)
	assert.Equal(t, "student", rec.Role)
}

func TestTransformEntryHostelFallsBackToRoom(t *testing.T) {
	rec := transformEntry(entryWith(map[string]string{"roomNumber": "214"}))
	assert.Equal(t, "214", rec.Hostel)

	rec = transformEntry(entryWith(map[string]string{}))
	assert.Empty(t, rec.Hostel)
	assert.Empty(t, rec.Room)
}

func TestUserDNEscapesSpecialCharacters(t *testing.T) {
	c := &Client{cfg: Config{StudentOU: "ou=Students", BaseDN: "dc=dev,dc=com"}}

	assert.Equal(t, "uid=2211201099,ou=Students,dc=dev,dc=com", c.userDN("2211201099"))
	assert.Equal(t, `uid=a\,b,ou=Students,dc=dev,dc=com`, c.userDN("a,b"),
		"DN metacharacters in the username must be escaped")
}

func TestTransformEntryMissingAttributesStayEmpty(t *testing.T) {
	rec := transformEntry(entryWith(map[string]string{"uid": "2211201099"}))
	assert.Equal(t, "2211201099", rec.UID)
	assert.Empty(t, rec.Email)
	assert.Empty(t, rec.Mobile)
}
