package router

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"goji.io/pattern"
	"gopkg.in/go-playground/validator.v9"
)

// RequestParamType represents type of a request parameter
type RequestParamType string

const (
	// PathParam is a request path parameter type
	PathParam RequestParamType = "path"

	// QueryParam is a request query parameter type
	QueryParam RequestParamType = "query"
)

type structValidator validator.Validate

// JSONFieldName resolves a name of a struct field the way it appears in json payloads
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func newStructValidator() *structValidator {
	v := validator.New()
	v.RegisterTagNameFunc(JSONFieldName)
	return (*structValidator)(v)
}

// validateStruct reports failed fields by their json names
func (v *structValidator) validateStruct(ctx context.Context, target interface{}) error {
	err := (*validator.Validate)(v).Struct(target)
	if err == nil {
		return nil
	}
	logger.WithError(err).Info(ctx, "Failed to validate params")
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return BadRequestError("ValidationFailed: failed to validate params")
	}
	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	return ValidationFailedError(fields)
}

func pathParamValue(req *http.Request, name string) string {
	value, _ := req.Context().Value(pattern.Variable(name)).(string)
	return value
}

// ParamsBinder binds request params to values.
// The first failed param stops binding of the rest
type ParamsBinder struct {
	req       *http.Request
	err       error
	validator *structValidator
}

func newParamsBinder(req *http.Request, v *structValidator) *ParamsBinder {
	return &ParamsBinder{req: req, validator: v}
}

func (b *ParamsBinder) param(paramType RequestParamType, name string, rawValue string) *ParamBinder {
	return &ParamBinder{paramType: paramType, name: name, rawValue: rawValue, binder: b}
}

// PathParam binds param from request path. Missing params are empty
func (b *ParamsBinder) PathParam(name string) *ParamBinder {
	return b.param(PathParam, name, pathParamValue(b.req, name))
}

// QueryParam binds param from request query
func (b *ParamsBinder) QueryParam(name string) *ParamBinder {
	return b.param(QueryParam, name, b.req.URL.Query().Get(name))
}

// Validate returns binding error if any, otherwise validates target struct.
// See https://godoc.org/gopkg.in/go-playground/validator.v9 for tags
func (b *ParamsBinder) Validate(target interface{}) error {
	if b.err != nil {
		return b.err
	}
	return b.validator.validateStruct(b.req.Context(), target)
}

// ParamBinder binds particular param
type ParamBinder struct {
	paramType RequestParamType
	name      string
	rawValue  string
	binder    *ParamsBinder
}

// Default is used when the param is missing or empty
func (pb *ParamBinder) Default(value string) *ParamBinder {
	if pb.rawValue == "" {
		pb.rawValue = value
	}
	return pb
}

func (pb *ParamBinder) fail(err error) *ParamsBinder {
	logger.WithError(err).Info(pb.binder.req.Context(), "Failed to bind %v param %v", pb.paramType, pb.name)
	pb.binder.err = ParamValidationError(pb.paramType, pb.name)
	return pb.binder
}

// String bind param as string
func (pb *ParamBinder) String(receiver *string) *ParamsBinder {
	if pb.binder.err == nil {
		*receiver = pb.rawValue
	}
	return pb.binder
}

// Int bind param as int
func (pb *ParamBinder) Int(receiver *int) *ParamsBinder {
	if pb.binder.err != nil {
		return pb.binder
	}
	value, err := strconv.Atoi(pb.rawValue)
	if err != nil {
		return pb.fail(err)
	}
	*receiver = value
	return pb.binder
}

// CustomValue is a function that converts raw string to a target value
type CustomValue func(rawValue string) (interface{}, error)

// Custom binds a value produced by valueFn. Receiver must be a pointer
// to the type valueFn returns
func (pb *ParamBinder) Custom(receiver interface{}, valueFn CustomValue) *ParamsBinder {
	if pb.binder.err != nil {
		return pb.binder
	}
	value, err := valueFn(pb.rawValue)
	if err != nil {
		return pb.fail(err)
	}
	reflect.ValueOf(receiver).Elem().Set(reflect.ValueOf(value))
	return pb.binder
}
