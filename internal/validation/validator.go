// Package validation checks decoded request bodies against struct-tag
// rules using go-playground/validator.
//
// Every rule-bearing field carries a msg tag holding the message reported
// when a rule on that field fails; msg_<rule> overrides it for one rule.
// A field produces at most one entry:
//
//	type signUp struct {
//	    Email string `json:"email" validate:"required,email" msg:"Valid email is required"`
//	}
//
// Field names in the output are JSON paths ("location.lat").
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	nsv "github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/iliyamo/allclear/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one entry of a validation failure body.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
	Value any    `json:"value,omitempty"`
}

// Errors collects every failing field of a request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Msg
	}
	return strings.Join(msgs, "; ")
}

// Merge returns e with extra folded in.  An entry of extra replaces the
// entry of e reported for the same field; others are appended.
func (e Errors) Merge(extra ...FieldError) Errors {
	out := append(Errors(nil), e...)
	for _, fe := range extra {
		replaced := false
		for i := range out {
			if out[i].Field == fe.Field {
				out[i], replaced = fe, true
				break
			}
		}
		if !replaced {
			out = append(out, fe)
		}
	}
	return out
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("notblank", nsv.NotBlank)
		_ = v.RegisterValidation("friendstatus", func(fl validator.FieldLevel) bool {
			return model.FriendStatus(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Struct validates s and returns nil or a non-empty Errors.
func Struct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	root := indirectType(reflect.TypeOf(s))
	out := make(Errors, 0, len(verrs))
	seen := map[string]bool{}
	for _, fe := range verrs {
		path := trimRoot(fe.Namespace())
		if seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, FieldError{
			Field: path,
			Msg:   messageFor(root, path, fe.Tag(), fe.Field()),
			Value: presentValue(fe.Value()),
		})
	}
	return out
}

// TypeMismatch builds the error reported when the body holds a value of
// the wrong JSON type at path, e.g. a string where a number belongs.  A
// bare field name is resolved to its full path when it is unambiguous.
func TypeMismatch(s any, path string) Errors {
	if path == "" {
		return Errors{{Field: "body", Msg: "Invalid request body"}}
	}
	root := indirectType(reflect.TypeOf(s))
	if !strings.Contains(path, ".") {
		if full, ok := findPath(root, path, ""); ok {
			path = full
		}
	}
	return Errors{{Field: path, Msg: messageFor(root, path, "", path)}}
}

// findPath searches t depth-first for a field named name and returns its
// JSON path.
func findPath(t reflect.Type, name, prefix string) (string, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return "", false
	}
	for i := 0; i < t.NumField(); i++ {
		if jsonName(t.Field(i)) == name {
			return prefix + name, true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if p, ok := findPath(indirectType(f.Type), name, prefix+jsonName(f)+"."); ok {
			return p, true
		}
	}
	return "", false
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// trimRoot drops the top-level struct name from a validator namespace.
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// messageFor walks root along the JSON path and returns the message of
// the field found there: msg_<rule> when present, else msg.
func messageFor(root reflect.Type, path, rule, fallback string) string {
	t := root
	var field reflect.StructField
	for _, seg := range strings.Split(path, ".") {
		if t == nil || t.Kind() != reflect.Struct {
			return "Invalid value for " + fallback
		}
		found := false
		for i := 0; i < t.NumField(); i++ {
			if jsonName(t.Field(i)) == seg {
				field, found = t.Field(i), true
				break
			}
		}
		if !found {
			return "Invalid value for " + fallback
		}
		t = indirectType(field.Type)
	}
	if rule != "" {
		if msg := field.Tag.Get("msg_" + rule); msg != "" {
			return msg
		}
	}
	if msg := field.Tag.Get("msg"); msg != "" {
		return msg
	}
	return "Invalid value for " + fallback
}

// presentValue reports the offending value, dereferencing pointers and
// omitting nil ones.
func presentValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
