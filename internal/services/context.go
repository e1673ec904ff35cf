package services

import "context"

type contextKey string

const (
	channelContextKey   contextKey = "upright.channel"
	contentIDContextKey contextKey = "upright.content_id"
	stageContextKey     contextKey = "upright.stage"
)

// WithChannel annotates the context with the channel label being processed.
func WithChannel(ctx context.Context, label string) context.Context {
	if label == "" {
		return ctx
	}
	return context.WithValue(ctx, channelContextKey, label)
}

// ChannelFromContext extracts the channel label, if any.
func ChannelFromContext(ctx context.Context) (string, bool) {
	label, ok := ctx.Value(channelContextKey).(string)
	return label, ok && label != ""
}

// WithContentID annotates the context with the content identifier in flight.
func WithContentID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contentIDContextKey, id)
}

// ContentIDFromContext extracts the content identifier, if any.
func ContentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contentIDContextKey).(string)
	return id, ok && id != ""
}

// WithStage annotates the context with the active pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageContextKey, stage)
}

// StageFromContext extracts the pipeline stage name, if any.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageContextKey).(string)
	return stage, ok && stage != ""
}
