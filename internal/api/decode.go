package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var errBodyTooLarge = errors.New("payload too large")

// ValidationError reports every field that failed decoding or validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(f FieldError) {
	key := strings.Join(f.Loc, ".")
	for _, existing := range e.Fields {
		if strings.Join(existing.Loc, ".") == key {
			return
		}
	}
	e.Fields = append(e.Fields, f)
}

// payloadInput distinguishes absent fields from empty ones before they are
// copied into a WebhookPayload.
type payloadInput struct {
	EventType *string        `json:"event_type" validate:"required"`
	EntityID  *string        `json:"entity_id" validate:"required"`
	Data      map[string]any `json:"data" validate:"required"`
}

type updateInput struct {
	EventType *string        `json:"event_type"`
	Data      map[string]any `json:"data"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// readBody reads at most limit bytes, returning errBodyTooLarge beyond that.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

// decodeJSON decodes a single JSON object from body into dst. Numbers are kept
// as json.Number so echoed data round-trips without float rounding.
func decodeJSON(body []byte, dst any) *ValidationError {
	verr := &ValidationError{}

	if len(bytes.TrimSpace(body)) == 0 {
		verr.add(FieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"})
		return verr
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("trailing data after JSON value")
	}
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		verr.add(typeFieldError(typeErr))
		return verr
	}
	verr.add(FieldError{Loc: []string{"body"}, Msg: "JSON decode error: " + err.Error(), Type: "json_invalid"})
	return verr
}

func typeFieldError(e *json.UnmarshalTypeError) FieldError {
	loc := []string{"body"}
	if e.Field != "" {
		loc = append(loc, strings.Split(e.Field, ".")...)
	}
	switch e.Type.Kind() {
	case reflect.String, reflect.Pointer:
		return FieldError{Loc: loc, Msg: "Input should be a valid string", Type: "string_type"}
	case reflect.Map, reflect.Struct:
		return FieldError{Loc: loc, Msg: "Input should be a valid dictionary", Type: "dict_type"}
	default:
		return FieldError{Loc: loc, Msg: "Input has the wrong type", Type: "type_error"}
	}
}

// decodePayload parses and validates a create/update body. A type error on
// one field does not hide missing-field errors on the others.
func (s *Server) decodePayload(body []byte) (WebhookPayload, error) {
	var in payloadInput
	verr := decodeJSON(body, &in)
	if verr != nil && isBodyLevel(verr) {
		return WebhookPayload{}, verr
	}
	if verr == nil {
		verr = &ValidationError{}
	}

	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return WebhookPayload{}, fmt.Errorf("validate payload: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(FieldError{Loc: []string{"body", fe.Field()}, Msg: "Field required", Type: "missing"})
		}
	}
	if len(verr.Fields) > 0 {
		return WebhookPayload{}, verr
	}

	return WebhookPayload{
		EventType: *in.EventType,
		EntityID:  *in.EntityID,
		Data:      in.Data,
	}, nil
}

// decodeUpdate parses a partial-update body. All fields are optional.
func (s *Server) decodeUpdate(body []byte) (WebhookUpdate, error) {
	var in updateInput
	if verr := decodeJSON(body, &in); verr != nil {
		return WebhookUpdate{}, verr
	}
	return WebhookUpdate{EventType: in.EventType, Data: in.Data}, nil
}

// isBodyLevel reports whether the failure concerns the body as a whole, in
// which case field checks are meaningless.
func isBodyLevel(verr *ValidationError) bool {
	for _, f := range verr.Fields {
		if len(f.Loc) == 1 {
			return true
		}
	}
	return false
}
