package sqlloader

import (
	"context"
	"fmt"
	"time"
)

type contextKey string

const (
	startedTimeKey contextKey = "startedTime"
	positionKey    contextKey = "position"
)

// Position identifies the source line a handler is working on. Line is the
// line the current record starts on.
type Position struct {
	Source string
	Line   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Source, p.Line)
}

// PositionFrom returns the source position of the run ctx belongs to.
// Projectors can use it to annotate logs.
func PositionFrom(ctx context.Context) (Position, bool) {
	p, ok := ctx.Value(positionKey).(*Position)
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// withPosition stores a mutable position that the handler advances row by
// row, so the context is not rebuilt for every row.
func withPosition(ctx context.Context) (context.Context, *Position) {
	p := &Position{}
	return context.WithValue(ctx, positionKey, p), p
}

func withStartedTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, startedTimeKey, time.Now())
}

func startedTimeFrom(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startedTimeKey).(time.Time)
	return t, ok
}
