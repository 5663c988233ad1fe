package veil

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for masking events.
var (
	SignalMaskStart      = capitan.NewSignal("veil.mask.start", "Mask operation beginning")
	SignalMaskComplete   = capitan.NewSignal("veil.mask.complete", "Mask operation finished")
	SignalRenderStart    = capitan.NewSignal("veil.render.start", "Render operation beginning")
	SignalRenderComplete = capitan.NewSignal("veil.render.complete", "Render operation finished")
	SignalFieldSkipped   = capitan.NewSignal("veil.field.skipped", "Field left unmasked in lenient mode")
)

// Keys for typed event data.
var (
	KeyTypeName     = capitan.NewStringKey("type_name")
	KeyField        = capitan.NewStringKey("field")
	KeyContentType  = capitan.NewStringKey("content_type")
	KeySize         = capitan.NewIntKey("size")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyMaskedCount  = capitan.NewIntKey("masked_count")
	KeySkippedCount = capitan.NewIntKey("skipped_count")
	KeyError        = capitan.NewErrorKey("error")
)

// emitMaskStart emits an event when masking begins.
func emitMaskStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalMaskStart,
		KeyTypeName.Field(typeName),
	)
}

// emitMaskComplete emits an event when masking finishes.
func emitMaskComplete(ctx context.Context, typeName string, duration time.Duration, masked, skipped int, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
		KeySkippedCount.Field(skipped),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMaskComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalMaskComplete, fields...)
	}
}

// emitRenderStart emits an event when rendering begins.
func emitRenderStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalRenderStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitRenderComplete emits an event when rendering finishes.
func emitRenderComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, masked, skipped int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
		KeySkippedCount.Field(skipped),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalRenderComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalRenderComplete, fields...)
	}
}

// emitFieldSkipped emits an event when a lenient call leaves a failing
// field unmasked.
func emitFieldSkipped(ctx context.Context, typeName, field string, err error) {
	capitan.Error(ctx, SignalFieldSkipped,
		KeyTypeName.Field(typeName),
		KeyField.Field(field),
		KeyError.Field(err),
	)
}
