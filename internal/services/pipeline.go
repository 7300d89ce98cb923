package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/photomap/backend/internal/models"
)

const mimeJPEG = "image/jpeg"

// VerifyToken compares an inbound payload token with the shared verification
// secret. An unset secret rejects everything.
func VerifyToken(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// Pipeline turns file events into File records. HandleFileShared ingests a
// new upload and asks its owner for confirmation; HandleFileRemoved drops the
// record of a file that disappeared from Slack.
type Pipeline struct {
	verificationToken string
	sessions          SessionFactory
	users             *UserResolver
	files             FileStore
	extract           MetadataExtractor
	screener          ContentScreener
	archive           ImageArchive
	logger            *slog.Logger
}

type PipelineOption func(*Pipeline)

// WithExtractor replaces the EXIF extractor.
func WithExtractor(e MetadataExtractor) PipelineOption {
	return func(p *Pipeline) { p.extract = e }
}

// WithScreener drops photos the screener flags as unsafe.
func WithScreener(s ContentScreener) PipelineOption {
	return func(p *Pipeline) { p.screener = s }
}

// WithArchive copies accepted photos to an archive.
func WithArchive(a ImageArchive) PipelineOption {
	return func(p *Pipeline) { p.archive = a }
}

func NewPipeline(verificationToken string, sessions SessionFactory, users *UserResolver, files FileStore, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		verificationToken: verificationToken,
		sessions:          sessions,
		users:             users,
		files:             files,
		extract:           ExtractMetadata,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleFileShared runs one file_shared event to completion. Skips return nil;
// fatal steps return an error naming the step. Nothing is retried here.
func (p *Pipeline) HandleFileShared(ctx context.Context, ev models.FileSharedEvent) error {
	log := p.logger.With(
		"component", "pipeline",
		"event_id", uuid.NewString(),
		"file_id", ev.FileID,
		"user_id", ev.UserID,
	)

	if !VerifyToken(p.verificationToken, ev.Token) {
		log.Warn("verification token mismatch, event dropped")
		eventsTotal.WithLabelValues(kindFileShared, outcomeRejected).Inc()
		return nil
	}

	session := p.sessions()

	user, err := p.users.EnsureUser(ctx, session, ev.UserID)
	if err != nil {
		return fail(log, kindFileShared, "resolve_user", err)
	}
	if user.IgnoreFilesShared {
		return skip(log, kindFileShared, "user opted out")
	}

	info, err := session.FileInfo(ctx, ev.FileID)
	if err != nil {
		return fail(log, kindFileShared, "fetch_file_meta", fmt.Errorf("files.info: %w", err))
	}
	if info.Mimetype != mimeJPEG {
		return skip(log, kindFileShared, "unsupported mime type", "mimetype", info.Mimetype)
	}

	content, err := session.Download(ctx, info.URLPrivate)
	if err != nil {
		return fail(log, kindFileShared, "download", err)
	}

	meta, err := p.extract(content)
	if err != nil {
		return fail(log, kindFileShared, "extract_metadata", err)
	}
	if !IsComplete(meta) {
		return skip(log, kindFileShared, "incomplete metadata",
			"has_date", meta != nil && meta.CreatedAt != "",
			"has_lat_ref", meta != nil && meta.LatitudeRef != "",
		)
	}
	createdAt, err := ParseCreatedDate(meta.CreatedAt)
	if err != nil {
		return skip(log, kindFileShared, "unparseable creation date", "created_at", meta.CreatedAt)
	}

	if p.screener != nil {
		unsafe, err := p.screener.IsUnsafe(ctx, content)
		if err != nil {
			return fail(log, kindFileShared, "screen", err)
		}
		if unsafe {
			return skip(log, kindFileShared, "content flagged by screener")
		}
	}

	fileID := info.ID
	if fileID == "" {
		fileID = ev.FileID
	}
	file := &models.File{
		ID:           fileID,
		URL:          info.URLPrivate,
		ThumbnailURL: info.Thumb80,
		CreatedAt:    createdAt,
		Lat:          ToDecimalDegrees(meta.Latitude, meta.LatitudeRef),
		Lng:          ToDecimalDegrees(meta.Longitude, meta.LongitudeRef),
		User:         user.Owner(),
		IsAllowed:    false,
	}

	if p.archive != nil {
		archived, err := p.archive.Store(ctx, file.ID, content)
		if err != nil {
			log.Warn("archive copy failed", "err", err)
		} else {
			file.ArchiveURL = archived
		}
	}

	if err := p.files.PutFile(ctx, file); err != nil {
		return fail(log, kindFileShared, "persist", err)
	}

	channel := ConfirmationChannel(info, user.ID)
	if err := session.PostMessage(ctx, channel, confirmationText, BuildConfirmation(file)); err != nil {
		return fail(log, kindFileShared, "send_confirmation", fmt.Errorf("%w: %w", ErrConfirmationFailed, err))
	}

	log.Info("confirmation requested",
		"channel", channel,
		"lat", file.Lat,
		"lng", file.Lng,
		"created_at", file.CreatedAt.Format("2006-01-02"),
	)
	eventsTotal.WithLabelValues(kindFileShared, outcomeProcessed).Inc()
	return nil
}

func skip(log *slog.Logger, kind, reason string, attrs ...any) error {
	log.Info("event skipped: "+reason, attrs...)
	eventsTotal.WithLabelValues(kind, outcomeSkipped).Inc()
	return nil
}

func fail(log *slog.Logger, kind, step string, err error) error {
	log.Error("event failed", "step", step, "err", err)
	eventsTotal.WithLabelValues(kind, outcomeFailed).Inc()
	stepFailuresTotal.WithLabelValues(kind, step).Inc()
	return fmt.Errorf("%s: %w", step, err)
}
