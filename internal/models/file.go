package models

import "time"

// FileOwner is a snapshot of the uploading user, not a live reference.
type FileOwner struct {
	ID       string `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
	FullName string `json:"fullName" bson:"full_name"`
}

// File is a geotagged photo shared in Slack. A record with IsAllowed == false
// is waiting for its uploader to confirm.
type File struct {
	ID           string    `json:"id" bson:"_id"`
	URL          string    `json:"url" bson:"url"`
	ThumbnailURL string    `json:"thumbnailUrl" bson:"thumbnail_url"`
	ArchiveURL   string    `json:"archiveUrl,omitempty" bson:"archive_url,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	Lat          float64   `json:"lat" bson:"lat"`
	Lng          float64   `json:"lng" bson:"lng"`
	User         FileOwner `json:"user" bson:"user"`
	IsAllowed    bool      `json:"isAllowed" bson:"is_allowed"`
}

// SlackFile is the subset of files.info the pipeline needs.
type SlackFile struct {
	ID         string
	URLPrivate string
	Thumb80    string
	Mimetype   string
	Channels   []string
}

// Bounds is a lat/lng bounding box used by the map API.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the point lies inside the box (edges included).
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ListFilesQuery filters File listings.
type ListFilesQuery struct {
	Bounds  *Bounds
	Allowed *bool
	Limit   int
}
