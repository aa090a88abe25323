package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the JSON kind a schema field must decode into.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindObject Kind = "object"
	KindArray  Kind = "array"
)

// Field declares one expected response field.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema is the declarative response shape for a structured-text request.
// Validation happens right after fence stripping so that a bad response is a
// structured failure, not a best-effort parse.
type Schema struct {
	Fields []Field
}

// Instruction renders the schema as a model-facing instruction appended to
// the system message.
func (s Schema) Instruction() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. Fields:\n")
	for _, f := range s.Fields {
		requirement := "optional"
		if f.Required {
			requirement = "required"
		}
		fmt.Fprintf(&b, "- %q (%s, %s)\n", f.Name, f.Kind, requirement)
	}
	return b.String()
}

// ValidationError reports why a response failed schema validation. It
// carries the cleaned text for diagnostics and matches ErrMalformedOutput
// with errors.Is.
type ValidationError struct {
	// Raw is the accumulated text after fence stripping.
	Raw      string
	Missing  []string
	Mistyped []string
	cause    error
}

func (e *ValidationError) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("malformed generation output: %v", e.cause)
	case len(e.Missing) > 0:
		return fmt.Sprintf("malformed generation output: missing required fields %v", e.Missing)
	default:
		return fmt.Sprintf("malformed generation output: mistyped fields %v", e.Mistyped)
	}
}

func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrMalformedOutput}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// CleanFences strips a single layer of Markdown code fencing, with or
// without a "json" language tag, from the accumulated text. Applying it to
// already clean text is a no-op.
func CleanFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	// Drop the language tag on the opening fence line, e.g. ```json.
	if newline := strings.IndexByte(cleaned, '\n'); newline >= 0 {
		firstLine := strings.TrimSpace(cleaned[:newline])
		if firstLine == "" || firstLine == "json" {
			cleaned = cleaned[newline+1:]
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// Validate fence-strips raw, parses it as a JSON object, and checks it
// against the schema. It returns the parsed object on success and a
// *ValidationError otherwise.
func (s Schema) Validate(raw string) (map[string]any, error) {
	cleaned := CleanFences(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &ValidationError{Raw: cleaned, cause: err}
	}

	var missing, mistyped []string
	for _, field := range s.Fields {
		value, ok := doc[field.Name]
		if !ok || value == nil {
			if field.Required {
				missing = append(missing, field.Name)
			}
			continue
		}
		if !matchesKind(value, field.Kind) {
			mistyped = append(mistyped, field.Name)
		}
	}
	if len(missing) > 0 || len(mistyped) > 0 {
		return nil, &ValidationError{Raw: cleaned, Missing: missing, Mistyped: mistyped}
	}

	return doc, nil
}

func matchesKind(value any, kind Kind) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		_, ok := value.(float64)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	}
	return false
}
