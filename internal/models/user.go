package models

import "time"

// User is the local record of a Slack user who has shared at least one file.
// IgnoreFilesShared only ever goes from false to true.
type User struct {
	ID                string    `json:"id" bson:"_id"`
	Username          string    `json:"username" bson:"username"`
	FullName          string    `json:"fullName" bson:"full_name"`
	IgnoreFilesShared bool      `json:"ignoreFilesShared" bson:"ignore_files_shared"`
	CreatedAt         time.Time `json:"createdAt" bson:"created_at"`
}

// Owner returns the denormalized copy embedded in File records.
func (u *User) Owner() FileOwner {
	return FileOwner{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
	}
}

// SlackProfile is the subset of users.info we keep.
type SlackProfile struct {
	ID       string
	Name     string
	RealName string
}
