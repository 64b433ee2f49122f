package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	validate.RegisterValidation("item_status", oneOf("receiving", "out_warehouse"))
	validate.RegisterValidation("usage_type", oneOf("production", "return", "adjustment"))
	validate.RegisterValidation("rab_status", oneOf("draft", "bidding_process", "approved", "rejected"))
	validate.RegisterValidation("task_status", oneOf("pending", "in_progress", "completed"))
	validate.RegisterValidation("task_priority", oneOf("low", "medium", "high"))
	validate.RegisterValidation("tx_category", oneOf(
		"bahan", "alat", "upah", "vendor", "operasional", "kas_masuk", "uang_masuk", "aset", "hutang",
	))

	// decimals are compared as floats so gt/gte/lte tags work on them
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Message flattens validation errors into one line for an error response.
func Message(errs []*ErrorResponse) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		field := e.FailedField
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if e.Value != "" {
			parts = append(parts, fmt.Sprintf("%s failed on %s=%s", field, e.Tag, e.Value))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed on %s", field, e.Tag))
		}
	}
	return strings.Join(parts, "; ")
}
