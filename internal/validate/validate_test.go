package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupRulesPass(t *testing.T) {
	fields := map[string]string{
		"name":     "  Ada  ",
		"email":    "  Ada@Example.COM ",
		"password": "secret1",
	}
	violations := Run(fields, SignupRules())
	require.Empty(t, violations)

	// Normalized values replace the originals.
	assert.Equal(t, "Ada", fields["name"])
	assert.Equal(t, "ada@example.com", fields["email"])
}

func TestSignupRulesCollectAllViolations(t *testing.T) {
	fields := map[string]string{
		"name":     "   ",
		"email":    "not-an-email",
		"password": "short",
	}
	violations := Run(fields, SignupRules())
	require.Len(t, violations, 3)

	// Violations come back in rule order.
	assert.Equal(t, "name", violations[0].Field)
	assert.Equal(t, "email", violations[1].Field)
	assert.Equal(t, "password", violations[2].Field)
	assert.Equal(t, "not-an-email", violations[1].Value)
}

func TestPasswordTrimmedBeforeLengthCheck(t *testing.T) {
	fields := map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "  1234  ", // 4 chars after trim
	}
	violations := Run(fields, SignupRules())
	require.Len(t, violations, 1)
	assert.Equal(t, "password", violations[0].Field)
}

func TestPostRules(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		wantErr int
	}{
		{"valid", "A fine title", "Some long enough content", 0},
		{"short title", "abc", "Some long enough content", 1},
		{"short content", "A fine title", "hey", 1},
		{"both short", "ab", "cd", 2},
		{"whitespace only", "        ", "        ", 2},
		{"exactly five", "12345", "12345", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{"title": tt.title, "content": tt.content}
			violations := Run(fields, PostRules())
			assert.Len(t, violations, tt.wantErr)
		})
	}
}

func TestEmailCheck(t *testing.T) {
	assert.True(t, Email("user@example.com"))
	assert.True(t, Email("user+tag@sub.example.co"))
	assert.False(t, Email(""))
	assert.False(t, Email("missing-at.example.com"))
	assert.False(t, Email("user@"))
}

func TestSigninRulesNormalizeEmail(t *testing.T) {
	fields := map[string]string{"email": "ADA@Example.com", "password": "whatever"}
	violations := Run(fields, SigninRules())
	require.Empty(t, violations)
	assert.Equal(t, "ada@example.com", fields["email"])
}

func TestMinLenCountsRunes(t *testing.T) {
	check := MinLen(5)
	assert.True(t, check("héllo"))
	assert.False(t, check("héll"))
}
