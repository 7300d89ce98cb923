package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/photomap/backend/internal/models"
)

// HandleFileRemoved deletes the record of a file that was unshared or deleted
// in Slack. Files that were never stored are expected and not an error.
func (p *Pipeline) HandleFileRemoved(ctx context.Context, ev models.FileRemovedEvent) error {
	log := p.logger.With(
		"component", "removal",
		"event_id", uuid.NewString(),
		"event_type", ev.Type,
		"file_id", ev.FileID,
	)

	if !VerifyToken(p.verificationToken, ev.Token) {
		log.Warn("verification token mismatch, event dropped")
		eventsTotal.WithLabelValues(kindFileRemoved, outcomeRejected).Inc()
		return nil
	}

	if _, err := p.files.GetFile(ctx, ev.FileID); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return skip(log, kindFileRemoved, "file not found")
		}
		return fail(log, kindFileRemoved, "lookup", err)
	}

	if err := p.files.DeleteFile(ctx, ev.FileID); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return skip(log, kindFileRemoved, "file already removed")
		}
		return fail(log, kindFileRemoved, "delete", err)
	}
	removeArchived(ctx, log, p.archive, ev.FileID)

	log.Info("file removed")
	eventsTotal.WithLabelValues(kindFileRemoved, outcomeProcessed).Inc()
	return nil
}

func removeArchived(ctx context.Context, log *slog.Logger, archive ImageArchive, fileID string) {
	if archive == nil {
		return
	}
	if err := archive.Remove(ctx, fileID); err != nil {
		log.Warn("archive cleanup failed", "err", err)
	}
}
