// Package events defines the observational sink notified around every
// build-file parse. Sinks never influence control flow.
package events

import (
	"context"

	"github.com/vk/skyparse/internal/ctxlog"
)

// Sink receives parse lifecycle notifications. ParseFinished fires on
// every exit path, success or failure.
type Sink interface {
	ParseStarted(ctx context.Context, path string)
	ParseFinished(ctx context.Context, path string, ruleCount int, err error)
}

// NewLogSink returns a sink that reports through the context logger.
func NewLogSink() Sink {
	return logSink{}
}

type logSink struct{}

func (logSink) ParseStarted(ctx context.Context, path string) {
	ctxlog.FromContext(ctx).Debug("Parse started.", "path", path)
}

func (logSink) ParseFinished(ctx context.Context, path string, ruleCount int, err error) {
	logger := ctxlog.FromContext(ctx)
	if err != nil {
		logger.Debug("Parse finished with error.", "path", path, "error", err)
		return
	}
	logger.Debug("Parse finished.", "path", path, "rules", ruleCount)
}

// Discard is a sink that drops every notification. Useful in tests.
var Discard Sink = discard{}

type discard struct{}

func (discard) ParseStarted(context.Context, string)              {}
func (discard) ParseFinished(context.Context, string, int, error) {}
