package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// the message the dashboard shows for any missing field
var ErrMissingFields = errors.New("all fields are required")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report wire names rather than Go field names
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	return v
}

// Field names as they appear on the wire and in the form.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldDepartment = "department"
)

// Draft is the in-progress form input. A non-empty EditingID means edit mode.
type Draft struct {
	Fields
	EditingID ID `json:"editingId,omitempty"`
}

func (d Draft) Editing() bool {
	return !d.EditingID.IsZero()
}

// DraftFor copies a record into the form and targets it for update.
func DraftFor(r Record) Draft {
	return Draft{Fields: r.Fields(), EditingID: r.ID}
}

// Set changes one field by its wire name.
func (d Draft) Set(field, value string) (Draft, error) {
	switch field {
	case FieldFirstName:
		d.FirstName = value
	case FieldLastName:
		d.LastName = value
	case FieldEmail:
		d.Email = value
	case FieldDepartment:
		d.Department = value
	default:
		return d, fmt.Errorf("unknown draft field %q", field)
	}

	return d, nil
}

// Validate is a presence check only: every field must be non-empty.
func (f Fields) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	return err
}
