// Package validation enforces field rules on users, films and reference data
// before they reach a store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/filmorate/backend/internal/models"
)

// CinemaEpoch is the earliest accepted film release date.
var CinemaEpoch = models.NewDate(1895, time.December, 28)

// Gate validates entities. It is safe for concurrent use.
type Gate struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a Gate. now defaults to time.Now and decides what "future" means.
func New(now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	g := &Gate{validate: validator.New(), now: now}

	g.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	g.validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(models.Date); ok {
			return d.Time
		}
		return nil
	}, models.Date{})

	if err := registerRules(g.validate, g.rules()); err != nil {
		panic(err)
	}
	return g
}

// rules maps the custom tags used by the model struct tags to their checks.
func (g *Gate) rules() map[string]validator.Func {
	return map[string]validator.Func{
		"notblank":     validateNotBlank,
		"nowhitespace": validateNoWhitespace,
		"notfuture":    g.validateNotFuture,
		"cinemaepoch":  validateCinemaEpoch,
	}
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q rule: %w", tag, err)
		}
	}
	return nil
}

// User checks user fields and fills Name from Login when it is blank.
func (g *Gate) User(user *models.User) error {
	if user == nil {
		return &models.ValidationError{Reason: "user is required"}
	}
	if err := g.check(user); err != nil {
		return err
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	return nil
}

// Film checks film fields. Reference existence is checked by the catalog.
func (g *Gate) Film(film models.Film) error {
	return g.check(film)
}

// ReferenceName checks the name of a genre or rating.
func (g *Gate) ReferenceName(field, name string) error {
	if err := g.validate.Var(name, "notblank,max=64"); err != nil {
		return translate(field, err)
	}
	return nil
}

func (g *Gate) check(value any) error {
	if err := g.validate.Struct(value); err != nil {
		return translate("", err)
	}
	return nil
}

func translate(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	if field == "" {
		field = fe.Field()
	}
	return &models.ValidationError{Field: field, Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "must not be blank"
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	case "nowhitespace":
		return "must not contain whitespace"
	case "notfuture":
		return "must not be in the future"
	case "cinemaepoch":
		return "must not be before " + CinemaEpoch.String()
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	}
	return "is invalid"
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateNoWhitespace(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

// validateNotFuture accepts a missing date.
func (g *Gate) validateNotFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok || t.IsZero() {
		return true
	}
	now := g.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !t.After(today)
}

// validateCinemaEpoch rejects a missing date.
func validateCinemaEpoch(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok || t.IsZero() {
		return false
	}
	return !t.Before(CinemaEpoch.Time)
}
