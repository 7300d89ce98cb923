package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/photomap/backend/internal/models"
)

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		meta *models.ImageMetadata
		want bool
	}{
		{"nil", nil, false},
		{"empty", &models.ImageMetadata{}, false},
		{"date only", &models.ImageMetadata{CreatedAt: "2017:06:01 10:00:00"}, false},
		{"ref only", &models.ImageMetadata{LatitudeRef: "N"}, false},
		{"blank date", &models.ImageMetadata{CreatedAt: "  ", LatitudeRef: "N"}, false},
		{"date and ref", &models.ImageMetadata{CreatedAt: "2017:06:01 10:00:00", LatitudeRef: "S"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsComplete(tt.meta); got != tt.want {
				t.Fatalf("IsComplete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractMetadataRejectsNonImage(t *testing.T) {
	_, err := ExtractMetadata([]byte("definitely not a jpeg"))
	if !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}

func TestExtractMetadataReadsGPSAndOriginalDate(t *testing.T) {
	jpeg := buildExifJPEG(
		[]exifEntry{
			asciiEntry(tagDateTime, "2019:01:01 00:00:00"),
		},
		[]exifEntry{
			asciiEntry(tagDateTimeOriginal, "2017:06:01 10:11:12"),
		},
		[]exifEntry{
			asciiEntry(tagGPSLatitudeRef, "N"),
			rationalEntry(tagGPSLatitude, dms(40, 26, 46)...),
			asciiEntry(tagGPSLongitudeRef, "W"),
			rationalEntry(tagGPSLongitude, dms(79, 58, 56)...),
		},
	)

	meta, err := ExtractMetadata(jpeg)
	if err != nil {
		t.Fatalf("ExtractMetadata: %v", err)
	}
	if meta.CreatedAt != "2017:06:01 10:11:12" {
		t.Fatalf("expected DateTimeOriginal to win, got %q", meta.CreatedAt)
	}
	if meta.LatitudeRef != "N" || meta.LongitudeRef != "W" {
		t.Fatalf("unexpected refs %q %q", meta.LatitudeRef, meta.LongitudeRef)
	}
	if meta.Latitude != [3]float64{40, 26, 46} || meta.Longitude != [3]float64{79, 58, 56} {
		t.Fatalf("unexpected DMS %v %v", meta.Latitude, meta.Longitude)
	}
	if !IsComplete(meta) {
		t.Fatalf("expected complete metadata")
	}

	lat := ToDecimalDegrees(meta.Latitude, meta.LatitudeRef)
	lng := ToDecimalDegrees(meta.Longitude, meta.LongitudeRef)
	if math.Abs(lat-40.446111) > 1e-5 || math.Abs(lng+79.982222) > 1e-5 {
		t.Fatalf("unexpected decimal degrees %v,%v", lat, lng)
	}
	day, err := ParseCreatedDate(meta.CreatedAt)
	if err != nil || !day.Equal(time.Date(2017, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %v err %v", day, err)
	}
}

func TestExtractMetadataFallsBackToDateTime(t *testing.T) {
	jpeg := buildExifJPEG(
		[]exifEntry{asciiEntry(tagDateTime, "2016:02:29 08:00:00")},
		nil,
		nil,
	)

	meta, err := ExtractMetadata(jpeg)
	if err != nil {
		t.Fatalf("ExtractMetadata: %v", err)
	}
	if meta.CreatedAt != "2016:02:29 08:00:00" {
		t.Fatalf("expected DateTime fallback, got %q", meta.CreatedAt)
	}
	if meta.LatitudeRef != "" || meta.Latitude != ([3]float64{}) {
		t.Fatalf("expected no GPS data, got %+v", meta)
	}
	if IsComplete(meta) {
		t.Fatalf("photo without GPS must be incomplete")
	}
}

func TestParseCreatedDate(t *testing.T) {
	want := time.Date(2017, time.June, 1, 0, 0, 0, 0, time.UTC)

	got, err := ParseCreatedDate("2017:06:01 23:59:10")
	if err != nil {
		t.Fatalf("ParseCreatedDate: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	got, err = ParseCreatedDate("2017:06:01")
	if err != nil || !got.Equal(want) {
		t.Fatalf("date-only: got %v err %v", got, err)
	}

	if _, err := ParseCreatedDate("yesterday"); err == nil {
		t.Fatalf("expected parse error")
	}
}
