// Package tools holds the functions the voice agent may invoke mid-call.
// The registry is an explicit allow-list injected at construction; a name
// outside the list degrades to an "Unknown function" result so the live
// conversation never errors out.
package tools

import (
	"context"

	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// UnknownFunctionResult is returned for tool names outside the allow-list.
const UnknownFunctionResult = "Unknown function"

// Func executes one tool invocation. The result string is spoken back into
// the conversation by the voice agent, so errors should read as sentences.
type Func func(ctx context.Context, args map[string]any) (string, error)

// Registry is the fixed allow-list of callables exposed to the voice agent.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry builds a registry from the given name→function mapping.
func NewRegistry(funcs map[string]Func) *Registry {
	copied := make(map[string]Func, len(funcs))
	for name, fn := range funcs {
		copied[name] = fn
	}
	return &Registry{funcs: copied}
}

// Dispatch runs the named tool with the given arguments. Unknown names and
// tool failures both produce a result string rather than an error; the
// provider relays whatever comes back and the call continues.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	fn, ok := r.funcs[name]
	if !ok {
		logger.Base().Warn("tool call for unregistered function", zap.String("name", name))
		return UnknownFunctionResult
	}

	result, err := fn(ctx, args)
	if err != nil {
		logger.Base().Error("tool execution failed",
			zap.String("name", name), zap.Error(err))
		return "An error occurred: " + err.Error()
	}
	return result
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}
