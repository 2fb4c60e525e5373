package allscreenshots

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks req against its validate tags and reports every
// failing field as a KindInvalidRequest error.
func validateRequest(req any) error {
	if req == nil || (reflect.ValueOf(req).Kind() == reflect.Ptr && reflect.ValueOf(req).IsNil()) {
		return &apierrors.Error{Kind: apierrors.KindInvalidRequest, Message: "request is required"}
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &apierrors.Error{Kind: apierrors.KindInvalidRequest, Message: err.Error(), Err: err}
	}

	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[fieldPath(fe)] = describeFieldError(fe)
	}
	return &apierrors.Error{
		Kind:    apierrors.KindInvalidRequest,
		Message: "request validation failed",
		Details: details,
		Err:     err,
	}
}

// fieldPath drops the root struct name: ScreenshotRequest.viewport.width
// becomes viewport.width.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describeFieldError(fe validator.FieldError) string {
	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map:
		unit = " items"
	}

	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return "must be at least " + fe.Param() + unit
	case "max", "lte":
		return "must be at most " + fe.Param() + unit
	case "excluded_with":
		return "must not be combined with " + fe.Param()
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
