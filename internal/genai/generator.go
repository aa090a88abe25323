// Package genai wraps the generative model behind a small transport-neutral
// interface: structured text arrives as an incremental stream and is parsed
// against a declared schema, images arrive as data URIs or not at all.
package genai

import (
	"context"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
)

var (
	// ErrMissingCredential means no API key was configured. Checked before
	// any network activity, surfaced to the user as "enter a key".
	ErrMissingCredential = errors.NewSentinel("generative API key is not set")
	// ErrMalformedOutput means the accumulated model output did not parse
	// as the declared structured data after fence stripping.
	ErrMalformedOutput = errors.NewSentinel("model output did not match the declared schema")
)

// TextRequest describes one structured-text generation call.
type TextRequest struct {
	// Prompt is the user-level prompt body.
	Prompt string
	// System is the system-level instruction. The schema instruction is
	// appended to it on the wire.
	System string
	// Schema declares the shape the response must parse into.
	Schema Schema
}

// Aspect hints the image aspect ratio.
type Aspect string

const (
	AspectSquare Aspect = "1:1"
	AspectWide   Aspect = "16:9"
)

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Prompt string
	Aspect Aspect
}

// Stream delivers structured-text output incrementally. Recv returns io.EOF
// when the stream ends. No granularity is guaranteed: a delta may be one
// token or one paragraph.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Generator is the generative-model boundary. Image returns a data URI, or
// the empty string when the image could not be produced for any reason other
// than a missing credential. Image absence is always tolerated, never an
// error.
type Generator interface {
	StreamText(ctx context.Context, req TextRequest) (Stream, error)
	Image(ctx context.Context, req ImageRequest) (string, error)
}
