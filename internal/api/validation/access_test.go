package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifedash/lifedash/internal/api/validation"
)

func TestValidateGrantRequest_Valid(t *testing.T) {
	for _, level := range []string{"", "read", "write", "admin"} {
		errs := validation.ValidateGrantRequest(validation.GrantRequest{
			Email:       "assistant@example.com",
			AccessLevel: level,
		})
		assert.Empty(t, errs, "level %q", level)
	}
}

func TestValidateGrantRequest_BadEmail(t *testing.T) {
	cases := []string{"", "   ", "no-at-sign", "@leading.com", "trailing@", "two@@ats.com", strings.Repeat("a", 250) + "@b.com"}
	for _, email := range cases {
		errs := validation.ValidateGrantRequest(validation.GrantRequest{Email: email})
		assert.NotEmpty(t, errs, "email %q", email)
		assert.Equal(t, "email", errs[0].Field)
	}
}

func TestValidateGrantRequest_BadLevel(t *testing.T) {
	errs := validation.ValidateGrantRequest(validation.GrantRequest{
		Email:       "assistant@example.com",
		AccessLevel: "superuser",
	})
	assert.Len(t, errs, 1)
	assert.Equal(t, "accessLevel", errs[0].Field)
}

func TestValidateRevokeEmail(t *testing.T) {
	assert.Empty(t, validation.ValidateRevokeEmail("a@b.com"))
	assert.NotEmpty(t, validation.ValidateRevokeEmail("nope"))
}
