// Package schema validates operation payloads against statically
// defined per-operation schemas before they reach typed domain logic.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Policy controls how unknown payload fields are treated.
type Policy int

const (
	// Strict rejects fields that are not declared in the schema.
	Strict Policy = iota
	// Lenient tolerates and ignores undeclared fields.
	Lenient
)

// ParsePolicy maps a configuration string to a Policy. Unrecognized
// values fall back to Strict.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "lenient") {
		return Lenient
	}
	return Strict
}

// Kind is the expected JSON type of a field.
type Kind int

const (
	// Any accepts any JSON value.
	Any Kind = iota
	// String accepts JSON strings.
	String
	// Object accepts JSON objects, optionally validated by a nested schema.
	Object
)

// Rule constrains a single payload field.
type Rule struct {
	Kind      Kind
	Enum      []string // closed value set, String kind only
	MinLength int      // minimum length, String kind only
	UUID      bool     // must parse as a UUID, String kind only
	Schema    *Schema  // nested schema, Object kind only
}

// Schema describes the payload of one operation.
type Schema struct {
	Required []string
	Fields   map[string]Rule
	// Pattern, when set, applies to every field not named in Fields
	// (the batch-lookup payload keys arbitrary names to ids).
	Pattern *Rule
	// MinFields requires at least this many fields to be present.
	MinFields int
}

// FieldError records one violated rule on one field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of field violations. The list
// is preserved verbatim into the response envelope.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "invalid payload: " + strings.Join(msgs, "; ")
}

// UnknownOperationError is returned for an operation name that has no
// schema. It is distinct from a validation failure.
type UnknownOperationError struct {
	Op string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Op)
}

// Set maps operation names to their schemas under one field policy.
type Set struct {
	policy  Policy
	schemas map[string]*Schema
}

// NewSet creates a schema set with the given unknown-field policy.
func NewSet(policy Policy, schemas map[string]*Schema) *Set {
	return &Set{policy: policy, schemas: schemas}
}

// Has reports whether the set carries a schema for op.
func (s *Set) Has(op string) bool {
	_, ok := s.schemas[op]
	return ok
}

// Validate checks payload against the schema for op. A nil payload is
// treated as an empty object.
func (s *Set) Validate(op string, payload map[string]any) error {
	sch, ok := s.schemas[op]
	if !ok {
		return &UnknownOperationError{Op: op}
	}

	errs := sch.check(payload, "", s.policy)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func (sch *Schema) check(payload map[string]any, prefix string, policy Policy) []FieldError {
	var errs []FieldError

	path := func(field string) string {
		if prefix == "" {
			return field
		}
		return prefix + "." + field
	}

	for _, field := range sch.Required {
		if _, ok := payload[field]; !ok {
			errs = append(errs, FieldError{Field: path(field), Message: field + " is required"})
		}
	}

	if sch.MinFields > 0 && len(payload) < sch.MinFields {
		errs = append(errs, FieldError{
			Field:   prefix,
			Message: fmt.Sprintf("at least %d field(s) required", sch.MinFields),
		})
	}

	// Deterministic field order keeps the error list stable.
	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value := payload[field]
		rule, declared := sch.Fields[field]
		if !declared {
			if sch.Pattern != nil {
				errs = append(errs, checkRule(*sch.Pattern, value, path(field), policy)...)
				continue
			}
			if policy == Strict {
				errs = append(errs, FieldError{Field: path(field), Message: "unexpected field"})
			}
			continue
		}
		errs = append(errs, checkRule(rule, value, path(field), policy)...)
	}

	return errs
}

func checkRule(rule Rule, value any, path string, policy Policy) []FieldError {
	switch rule.Kind {
	case String:
		str, ok := value.(string)
		if !ok {
			return []FieldError{{Field: path, Message: "must be a string"}}
		}
		if rule.MinLength > 0 && len(str) < rule.MinLength {
			return []FieldError{{
				Field:   path,
				Message: fmt.Sprintf("must be at least %d characters", rule.MinLength),
			}}
		}
		if rule.UUID {
			if _, err := uuid.Parse(str); err != nil {
				return []FieldError{{Field: path, Message: "must be a valid UUID"}}
			}
		}
		if len(rule.Enum) > 0 && !contains(rule.Enum, str) {
			return []FieldError{{
				Field:   path,
				Message: "must be one of " + strings.Join(rule.Enum, ", "),
			}}
		}
	case Object:
		obj, ok := value.(map[string]any)
		if !ok {
			return []FieldError{{Field: path, Message: "must be an object"}}
		}
		if rule.Schema != nil {
			return rule.Schema.check(obj, path, policy)
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
