package services

import (
	"context"
	"strings"

	"github.com/slack-go/slack"

	"github.com/photomap/backend/internal/models"
)

// Platform is one event's authenticated view of the messaging platform.
// Sessions are opened per event and never shared between events.
type Platform interface {
	UserInfo(ctx context.Context, userID string) (*models.SlackProfile, error)
	FileInfo(ctx context.Context, fileID string) (*models.SlackFile, error)
	Download(ctx context.Context, url string) ([]byte, error)
	PostMessage(ctx context.Context, channel string, text string, attachment slack.Attachment) error
	PostPrivate(ctx context.Context, channel string, userID string, text string) error
}

// SessionFactory opens a fresh Platform session for one inbound event.
type SessionFactory func() Platform

// SlackSession implements Platform on top of the Slack Web API.
type SlackSession struct {
	api        *slack.Client
	token      string
	downloader *Downloader
}

// NewSlackSessionFactory returns a factory building a new slack client per
// event. apiURL may be empty to use slack.com.
func NewSlackSessionFactory(token string, apiURL string, downloader *Downloader) SessionFactory {
	return func() Platform {
		opts := []slack.Option{}
		if apiURL != "" {
			if !strings.HasSuffix(apiURL, "/") {
				apiURL += "/"
			}
			opts = append(opts, slack.OptionAPIURL(apiURL))
		}
		return &SlackSession{
			api:        slack.New(token, opts...),
			token:      token,
			downloader: downloader,
		}
	}
}

func (s *SlackSession) UserInfo(ctx context.Context, userID string) (*models.SlackProfile, error) {
	u, err := s.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.SlackProfile{ID: u.ID, Name: u.Name, RealName: u.RealName}, nil
}

func (s *SlackSession) FileInfo(ctx context.Context, fileID string) (*models.SlackFile, error) {
	f, _, _, err := s.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return nil, err
	}
	return &models.SlackFile{
		ID:         f.ID,
		URLPrivate: f.URLPrivate,
		Thumb80:    f.Thumb80,
		Mimetype:   f.Mimetype,
		Channels:   f.Channels,
	}, nil
}

func (s *SlackSession) Download(ctx context.Context, url string) ([]byte, error) {
	return s.downloader.Fetch(ctx, url, s.token)
}

func (s *SlackSession) PostMessage(ctx context.Context, channel string, text string, attachment slack.Attachment) error {
	_, _, err := s.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAttachments(attachment),
	)
	return err
}

func (s *SlackSession) PostPrivate(ctx context.Context, channel string, userID string, text string) error {
	_, err := s.api.PostEphemeralContext(ctx, channel, userID, slack.MsgOptionText(text, false))
	return err
}
