package services

import (
	"github.com/slack-go/slack"

	"github.com/photomap/backend/internal/models"
)

const (
	confirmationText     = "I found a geotagged photo you shared. Can I put it on the map?"
	confirmationFallback = "You are unable to choose an option"
	confirmationColor    = "#3AA3E3"
)

// Replies sent privately to the user after a confirmation button is clicked.
const (
	replyAllowed          = "Thanks! Your photo is now on the map."
	replyDiscarded        = "OK, I discarded that photo."
	replyDiscardedForever = "OK, I discarded that photo and won't ask about your photos again."
	replyFailed           = "Something went wrong, please try again later."
)

// BuildConfirmation composes the interactive attachment for a pending file.
// The file id is both the callback id and every button's value.
func BuildConfirmation(f *models.File) slack.Attachment {
	button := func(name, text, style string) slack.AttachmentAction {
		return slack.AttachmentAction{
			Name:  name,
			Text:  text,
			Type:  slack.ActionType("button"),
			Value: f.ID,
			Style: style,
		}
	}
	return slack.Attachment{
		CallbackID: f.ID,
		Fallback:   confirmationFallback,
		Color:      confirmationColor,
		ThumbURL:   f.ThumbnailURL,
		Actions: []slack.AttachmentAction{
			button(models.ActionAllow, "Yes, share it", "primary"),
			button(models.ActionDisallow, "Not this one", "default"),
			button(models.ActionDisallowForever, "Never ask me again", "danger"),
		},
	}
}

// ConfirmationChannel picks the first channel the file was shared in, falling
// back to a direct message to the uploader.
func ConfirmationChannel(f *models.SlackFile, userID string) string {
	if f != nil && len(f.Channels) > 0 && f.Channels[0] != "" {
		return f.Channels[0]
	}
	return userID
}
