package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"dynamic-price-optimizer/internal/apperr"
)

// dateLayout is the expected wire format for the date field.
const dateLayout = "2006-01-02"

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report field names as they appear on the wire
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Request is the flat prediction input record. Every field is required;
// pointer types distinguish an absent field from a legitimate zero.
type Request struct {
	Date            string   `json:"date" validate:"required"`
	Price           *float64 `json:"price" validate:"required,gt=0"`
	CompetitorPrice *float64 `json:"competitor_price" validate:"required,gt=0"`
	Sales           *int     `json:"sales" validate:"required,gte=0"`
	Views           *int     `json:"views" validate:"required,gte=0"`
	StockLevel      *int     `json:"stock_level" validate:"required,gte=0"`
	MaxStock        *int     `json:"max_stock" validate:"required,gte=0"`
}

// ParseRequest decodes a JSON prediction record without validating it;
// validation happens inside Predict so that every entry path is covered.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &apperr.ValidationError{Field: "record", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return &req, nil
}

// Validate checks the request against the required-field schema and
// field-level constraints, returning a ValidationError identifying the
// first violated constraint. It parses and returns the date so callers do
// not parse twice.
func (r *Request) Validate() (time.Time, error) {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return time.Time{}, &apperr.ValidationError{Field: fe.Field(), Reason: constraintMessage(fe)}
		}
		return time.Time{}, &apperr.ValidationError{Field: "record", Reason: err.Error()}
	}

	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return time.Time{}, &apperr.ValidationError{Field: "date", Reason: fmt.Sprintf("must be a %s date", dateLayout)}
	}

	if *r.StockLevel > *r.MaxStock {
		return time.Time{}, &apperr.ValidationError{Field: "stock_level", Reason: "stock_level cannot exceed max_stock"}
	}
	return date, nil
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
