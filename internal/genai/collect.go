package genai

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
)

// Collect drives a structured-text stream to completion and decodes the
// accumulated output into T.
//
// After every increment, onUpdate receives the text accumulated so far. That
// is the only progress mechanism: fire-and-forget, typically displayed as-is.
// Once the stream ends the text is fence-stripped, validated against the
// request schema, and unmarshalled. A parse or validation failure returns an
// error matching ErrMalformedOutput carrying the cleaned text; it is never
// retried here.
func Collect[T any](ctx context.Context, g Generator, req TextRequest, onUpdate func(string)) (T, error) {
	var zero T

	stream, err := g.StreamText(ctx, req)
	if err != nil {
		return zero, err
	}
	defer func() {
		_ = stream.Close()
	}()

	var accumulated strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return zero, errors.Wrap(err, "receive completion delta")
		}
		accumulated.WriteString(delta)
		if onUpdate != nil {
			onUpdate(accumulated.String())
		}
	}

	cleaned := CleanFences(accumulated.String())
	if _, err := req.Schema.Validate(cleaned); err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return zero, &ValidationError{Raw: cleaned, cause: err}
	}
	return out, nil
}
