package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/photomap/backend/internal/models"
)

// Responder applies a user's answer to a confirmation message.
type Responder struct {
	verificationToken string
	sessions          SessionFactory
	users             *UserResolver
	files             FileStore
	archive           ImageArchive
	logger            *slog.Logger
}

func NewResponder(verificationToken string, sessions SessionFactory, users *UserResolver, files FileStore, archive ImageArchive, logger *slog.Logger) *Responder {
	return &Responder{
		verificationToken: verificationToken,
		sessions:          sessions,
		users:             users,
		files:             files,
		archive:           archive,
		logger:            logger,
	}
}

// HandleAction runs one button click. A stale callback id (record already
// gone) surfaces as ErrFileNotFound and a generic failure notice.
func (r *Responder) HandleAction(ctx context.Context, ev models.InteractiveActionEvent) error {
	fileID := ev.CallbackID
	if fileID == "" {
		fileID = ev.Value
	}
	log := r.logger.With(
		"component", "responder",
		"event_id", uuid.NewString(),
		"action", ev.Action,
		"file_id", fileID,
		"user_id", ev.UserID,
	)

	if !VerifyToken(r.verificationToken, ev.Token) {
		log.Warn("verification token mismatch, action dropped")
		eventsTotal.WithLabelValues(kindAction, outcomeRejected).Inc()
		return nil
	}

	var (
		reply string
		err   error
	)
	switch ev.Action {
	case models.ActionAllow:
		reply = replyAllowed
		err = r.files.SetAllowed(ctx, fileID)
	case models.ActionDisallow:
		reply = replyDiscarded
		err = r.discard(ctx, log, fileID)
	case models.ActionDisallowForever:
		reply = replyDiscardedForever
		// Both halves always run; the reply waits for both. The opt-out applies to
		// the clicker, who is not matched against the file owner.
		var g errgroup.Group
		g.Go(func() error { return r.discard(ctx, log, fileID) })
		g.Go(func() error { return r.users.MarkIgnoreFilesShared(ctx, ev.UserID) })
		err = g.Wait()
	default:
		return skip(log, kindAction, "unknown action")
	}

	session := r.sessions()
	channel := ev.ChannelID
	if channel == "" {
		channel = ev.UserID
	}

	if err != nil {
		if perr := session.PostPrivate(ctx, channel, ev.UserID, replyFailed); perr != nil {
			log.Error("failure notice not sent", "err", perr)
		}
		return fail(log, kindAction, ev.Action, err)
	}

	if err := session.PostPrivate(ctx, channel, ev.UserID, reply); err != nil {
		return fail(log, kindAction, "reply", fmt.Errorf("chat.postEphemeral: %w", err))
	}

	log.Info("action applied")
	eventsTotal.WithLabelValues(kindAction, outcomeProcessed).Inc()
	return nil
}

func (r *Responder) discard(ctx context.Context, log *slog.Logger, fileID string) error {
	if err := r.files.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	removeArchived(ctx, log, r.archive, fileID)
	return nil
}
