package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintportal/internal/auth"
)

const (
	testKey    = "unit-test-signing-key"
	testIssuer = "complaint-portal"
)

func TestIssueParseRoundTrip(t *testing.T) {
	token, exp, err := auth.Issue("2211201099", "stud@institute.edu", auth.RoleStudent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := auth.Parse(token, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "2211201099", claims.Subject)
	assert.Equal(t, "stud@institute.edu", claims.Email)
	assert.Equal(t, auth.RoleStudent, claims.Role)
}

func TestParseExpiredToken(t *testing.T) {
	token, _, err := auth.Issue("2211201099", "stud@institute.edu", auth.RoleStudent, testIssuer, testKey, -time.Minute)
	require.NoError(t, err)

	_, err = auth.Parse(token, testKey, testIssuer)
	assert.ErrorIs(t, err, auth.ErrExpired)
}

func TestParseWrongKey(t *testing.T) {
	token, _, err := auth.Issue("2211201099", "stud@institute.edu", auth.RoleStudent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	_, err = auth.Parse(token, "a-different-key", testIssuer)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrExpired)
}

func TestParseIssuerMismatch(t *testing.T) {
	token, _, err := auth.Issue("2211201099", "stud@institute.edu", auth.RoleStudent, "another-service", testKey, time.Hour)
	require.NoError(t, err)

	_, err = auth.Parse(token, testKey, testIssuer)
	assert.Error(t, err)
}

func TestParseDefaultsEmptyRoleToStudent(t *testing.T) {
	token, _, err := auth.Issue("2211201099", "stud@institute.edu", "", testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	claims, err := auth.Parse(token, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStudent, claims.Role)
}

func TestParseGarbage(t *testing.T) {
	_, err := auth.Parse("not-a-token", testKey, testIssuer)
	assert.Error(t, err)
}
