package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8,max=100"`
	Role     string `json:"role" validate:"oneof=member admin owner"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Email:    "alice@example.com",
		Password: "password123",
		Role:     "member",
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Email:    "invalid",
		Password: "short",
		Role:     "superuser",
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	if vErrs[0].Field != "email" || vErrs[1].Field != "password" || vErrs[2].Field != "role" {
		t.Fatalf("expected tag-derived field names in declaration order, got %+v", vErrs)
	}
}

func TestFirstMessage(t *testing.T) {
	err := ValidateStruct(testPayload{Email: "bob@example.com", Password: "short", Role: "member"})

	if got := FirstMessage(err); got != "password must be at least 8 characters" {
		t.Fatalf("unexpected first message: %q", got)
	}

	if got := FirstMessage(errors.New("decode failed")); got != "Invalid form submission" {
		t.Fatalf("unexpected fallback message: %q", got)
	}
	if got := FirstMessage(nil); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	cases := map[string]ValidationError{
		"email is required":                    {Field: "email", Tag: "required"},
		"email must be a valid email address":  {Field: "email", Tag: "email"},
		"name must be at most 100 characters":  {Field: "name", Tag: "max", Param: "100"},
		"role must be one of: member, owner":   {Field: "role", Tag: "oneof", Param: "member owner"},
		"memberId must be a valid identifier": {Field: "memberId", Tag: "uuid"},
	}

	for want, ve := range cases {
		if got := ve.Message(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("teamkit", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "teamkit"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"teamkit"`
	}

	if err := ValidateStruct(custom{Value: "teamkit"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}
