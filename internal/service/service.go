package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// ActivityRecorder appends entries to the activity log without failing the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, actor domain.Actor, action domain.ActivityAction, target, details string)
}

// maxCodeAttempts bounds the search for an unused generated code.
const maxCodeAttempts = 1000

// generateCode draws "{prefix}-NNNN" codes until taken reports false.
func generateCode(prefix string, taken func(code string) (bool, error)) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := fmt.Sprintf("%s-%d", prefix, 1000+rand.IntN(9000))
		exists, err := taken(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperrors.NewConflict("no unused code left for prefix "+prefix, nil)
}

// isID reports whether id can name a stored row.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func record(ctx context.Context, recorder ActivityRecorder, actor domain.Actor, action domain.ActivityAction, target, details string) {
	if recorder == nil {
		return
	}
	recorder.Record(ctx, actor, action, target, details)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func systemClock() time.Time { return time.Now() }
