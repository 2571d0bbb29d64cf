// Package activity records audit events. Appends are a side-channel: a
// failed write is logged and never propagated, so auditing can't fail the
// operation it describes.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-retail-api/internal/domain"
	"github.com/go-retail-api/internal/pkg/id"
)

// Store is the minimal append interface the recorder needs.
type Store interface {
	Append(ctx context.Context, e *domain.ActivityLogEntry) error
}

type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends an entry. Timestamps are truncated to whole seconds so the
// activity GSI's lexicographic range conditions stay chronological.
func (r *Recorder) Record(ctx context.Context, email, userID, action string, detail map[string]string) {
	if r == nil || r.store == nil {
		return
	}
	entry := &domain.ActivityLogEntry{
		EntryID:   id.New(),
		Email:     email,
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		slog.Warn("activity append failed", "email", email, "action", action, "err", err)
	}
}
