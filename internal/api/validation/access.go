package validation

import "strings"

// GrantRequest mirrors the fields needed for grant request validation.
type GrantRequest struct {
	Email       string
	AccessLevel string
}

// ValidateGrantRequest validates the fields of a grant request.
func ValidateGrantRequest(req GrantRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)

	switch req.AccessLevel {
	case "", "read", "write", "admin":
	default:
		errs = append(errs, FieldError{Field: "accessLevel", Message: "accessLevel must be \"read\", \"write\" or \"admin\""})
	}

	return errs
}

// ValidateRevokeEmail validates the email of a revoke request.
func ValidateRevokeEmail(email string) []FieldError {
	return validateEmail(email)
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []FieldError{{Field: "email", Message: "email is required"}}
	}
	if len(email) > 254 {
		return []FieldError{{Field: "email", Message: "email must be at most 254 characters"}}
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return []FieldError{{Field: "email", Message: "email must be a valid address"}}
	}

	return nil
}
