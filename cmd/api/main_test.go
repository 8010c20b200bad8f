package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/pkg/security"
)

func TestHashPasswordCommand(t *testing.T) {
	cmd := hashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("correct-horse\n"))
	cmd.SetArgs([]string{"--cost", "4"})

	require.NoError(t, cmd.Execute())
	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"))
	assert.NoError(t, security.NewBcryptHasher(4).Compare(hash, "correct-horse"))
}

func TestHashPasswordRejectsShortPassword(t *testing.T) {
	cmd := hashPasswordCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"short"})
	assert.ErrorIs(t, cmd.Execute(), security.ErrPasswordTooShort)
}

func TestReportCommandRejectsBadMonth(t *testing.T) {
	path := ""
	cmd := reportCmd(&path)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--month", "13"})
	assert.Error(t, cmd.Execute())
}
