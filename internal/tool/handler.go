package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Handler executes a tool call whose arguments have already been validated
// against the tool's schema.
type Handler interface {
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// HandlerFunc adapts a typed request function to Handler. Arguments are decoded
// into Req using its mapstructure tags.
type HandlerFunc[Req any] func(ctx context.Context, req Req) (string, error)

// Execute decodes args into Req and calls f.
func (f HandlerFunc[Req]) Execute(ctx context.Context, args map[string]any) (string, error) {
	req, err := decode[Req](args)
	if err != nil {
		return "", err
	}
	return f(ctx, req)
}

// Describe renders args for display using Req's String method, if it has one.
func (f HandlerFunc[Req]) Describe(args map[string]any) string {
	req, err := decode[Req](args)
	if err != nil {
		return ""
	}
	if s, ok := any(req).(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

func decode[Req any](args map[string]any) (Req, error) {
	var req Req
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &req,
		ErrorUnused: true,
	})
	if err != nil {
		return req, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return req, &ValidationError{Reason: err.Error()}
	}
	return req, nil
}

// Classify maps a handler error onto an ErrorKind using the behavioural
// methods that error types expose.
func Classify(err error) ErrorKind {
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}

	var denied interface{ PermissionDenied() bool }
	if errors.As(err, &denied) && denied.PermissionDenied() {
		return KindPermissionDenied
	}
	var notFound interface{ NotFound() bool }
	if errors.As(err, &notFound) && notFound.NotFound() {
		return KindNotFound
	}
	var noMatch interface{ NoMatch() bool }
	if errors.As(err, &noMatch) && noMatch.NoMatch() {
		return KindNoMatch
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return KindTimeout
	}
	var invalid interface{ InvalidInput() bool }
	if errors.As(err, &invalid) && invalid.InvalidInput() {
		return KindValidation
	}
	return KindExecution
}
