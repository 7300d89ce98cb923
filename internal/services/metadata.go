package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/photomap/backend/internal/models"
)

const exifDateLayout = "2006:01:02 15:04:05"

// MetadataExtractor parses embedded metadata out of image bytes.
type MetadataExtractor func(b []byte) (*models.ImageMetadata, error)

// ExtractMetadata reads the EXIF block of a JPEG. Missing tags are left empty;
// only an undecodable or absent EXIF block is an error.
func ExtractMetadata(b []byte) (*models.ImageMetadata, error) {
	x, err := exif.Decode(bytes.NewReader(b))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	meta := &models.ImageMetadata{
		CreatedAt:    tagString(x, exif.DateTimeOriginal),
		LatitudeRef:  tagString(x, exif.GPSLatitudeRef),
		Latitude:     tagDMS(x, exif.GPSLatitude),
		LongitudeRef: tagString(x, exif.GPSLongitudeRef),
		Longitude:    tagDMS(x, exif.GPSLongitude),
		Make:         tagString(x, exif.Make),
		Model:        tagString(x, exif.Model),
	}
	if meta.CreatedAt == "" {
		meta.CreatedAt = tagString(x, exif.DateTime)
	}
	return meta, nil
}

// IsComplete reports whether the metadata carries enough to place the photo
// on the map: a creation date and a latitude reference.
func IsComplete(meta *models.ImageMetadata) bool {
	if meta == nil {
		return false
	}
	return strings.TrimSpace(meta.CreatedAt) != "" && strings.TrimSpace(meta.LatitudeRef) != ""
}

// ParseCreatedDate parses an EXIF timestamp and truncates it to the day (UTC).
func ParseCreatedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(exifDateLayout, s)
	if err != nil {
		if len(s) < 10 {
			return time.Time{}, err
		}
		// Some cameras write only the date part.
		t, err = time.Parse("2006:01:02", s[:10])
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func tagDMS(x *exif.Exif, name exif.FieldName) [3]float64 {
	var out [3]float64
	tag, err := x.Get(name)
	if err != nil {
		return out
	}
	for i := 0; i < 3 && i < int(tag.Count); i++ {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			continue
		}
		out[i] = float64(num) / float64(den)
	}
	return out
}
