package main

// Notes:
// - Real signal delivery is not exercised; the tests cover the context
//   contract serve relies on for graceful shutdown.

import (
	"context"
	"testing"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cancel     func(parentCancel, stop context.CancelFunc)
		wantClosed bool
	}{
		{name: "live until signalled", cancel: func(_, _ context.CancelFunc) {}, wantClosed: false},
		{name: "stop releases", cancel: func(_, stop context.CancelFunc) { stop() }, wantClosed: true},
		{name: "parent cancellation propagates", cancel: func(parent, _ context.CancelFunc) { parent() }, wantClosed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent, parentCancel := context.WithCancel(context.Background())
			defer parentCancel()
			ctx, stop := notifyContext(parent)
			defer stop()

			tt.cancel(parentCancel, stop)

			closed := false
			select {
			case <-ctx.Done():
				closed = true
			default:
			}
			if closed != tt.wantClosed {
				t.Errorf("ctx done = %v, want %v", closed, tt.wantClosed)
			}
		})
	}
}
