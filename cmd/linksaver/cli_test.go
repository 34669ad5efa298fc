package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/version"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	original := version.Version
	version.Version = "v9.9.9"
	defer func() { version.Version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "linksaver v9.9.9")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("LINKSAVER_AUTH_SECRET", testSecret)
	tokenEmail, tokenSubject = "", ""

	out, err := execute(t, "token", "--email", "Alice@Example.com", "--ttl", "1h")
	require.NoError(t, err)

	v, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)
	claims, err := v.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.OwnerKey())
}

func TestTokenCmdRequiresIdentity(t *testing.T) {
	t.Setenv("LINKSAVER_AUTH_SECRET", testSecret)
	tokenEmail, tokenSubject = "", ""

	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestSummarizeRejectsBadURL(t *testing.T) {
	_, err := execute(t, "summarize", "ftp://example.com")
	assert.Error(t, err)

	_, err = execute(t, "metadata", "not a url")
	assert.Error(t, err)
}
