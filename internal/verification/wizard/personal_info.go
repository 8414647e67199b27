package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"surebet/internal/decision"
	dErrors "surebet/pkg/domain-errors"
)

// PersonalInfo is the first wizard step as entered by the applicant.
type PersonalInfo struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=200"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Address     string `json:"address" validate:"required,min=10,max=500"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,e164"`
	Country     string `json:"country" validate:"required,min=2,max=10"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims every field and upper-cases the country code.
func (p *PersonalInfo) Normalize() {
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.DateOfBirth = strings.TrimSpace(p.DateOfBirth)
	p.Address = strings.TrimSpace(p.Address)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Country = strings.ToUpper(strings.TrimSpace(p.Country))
}

// ParsePersonalInfo validates the step and turns it into the claim handed to
// the policy engine. The applicant must be at least minimumAge on now.
func ParsePersonalInfo(p PersonalInfo, now time.Time, minimumAge int) (decision.IdentityClaim, error) {
	p.Normalize()
	if err := validate.Struct(p); err != nil {
		return decision.IdentityClaim{}, validationError(err)
	}

	dob, err := time.Parse(decision.DateLayout, p.DateOfBirth)
	if err != nil {
		return decision.IdentityClaim{}, dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
	}
	if dob.After(now) {
		return decision.IdentityClaim{}, dErrors.New(dErrors.CodeValidation, "date_of_birth is in the future")
	}
	if AgeOn(dob, now) < minimumAge {
		return decision.IdentityClaim{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("applicant must be at least %d years old", minimumAge))
	}

	return decision.IdentityClaim{
		FullName:    p.FullName,
		DateOfBirth: dob,
		Address:     p.Address,
		Country:     p.Country,
	}, nil
}

// AgeOn returns the age in whole years of someone born on dob at now.
func AgeOn(dob, now time.Time) int {
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid personal information")
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		msg = "email must be a valid email address"
	case "e164":
		msg = "phone must be in international format, e.g. +447700900123"
	case "datetime":
		msg = fe.Field() + " must be YYYY-MM-DD"
	default:
		msg = fe.Field() + " is invalid"
	}
	return dErrors.New(dErrors.CodeValidation, msg)
}
