package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_HashesPassword(t *testing.T) {
	user, err := CreateUser("Ada Lovelace", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.True(t, user.CheckPassword("s3cret-pass"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.Equal(t, ROLE_MEMBER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
}

func TestCreateUser_Validation(t *testing.T) {
	if _, err := CreateUser("A", "ada@example.com", "s3cret-pass"); err == nil {
		t.Fatalf("expected error for too-short name")
	}
	if _, err := CreateUser("Ada Lovelace", "not-an-email", "s3cret-pass"); err == nil {
		t.Fatalf("expected error for invalid email")
	}
	if _, err := CreateUser("Ada Lovelace", "ada@example.com", "short"); err == nil {
		t.Fatalf("expected error for too-short password")
	}
}

func TestIssueAPIToken(t *testing.T) {
	user := &User{}
	require.False(t, user.HasActiveAPIToken())

	raw, err := user.IssueAPIToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "phs_"))
	assert.Equal(t, HashAPIToken(raw), user.APITokenHash)
	assert.Equal(t, raw[:8], user.APITokenPrefix)
	assert.NotNil(t, user.APITokenIssuedAt)
	assert.True(t, user.HasActiveAPIToken())

	// A fresh token replaces the old hash.
	again, err := user.IssueAPIToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, again)
	assert.Equal(t, HashAPIToken(again), user.APITokenHash)
}

func TestHashAPIToken_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIToken("phs_abc"), HashAPIToken("  phs_abc \n"))
	assert.Len(t, HashAPIToken("anything"), 64)
}
