package models

// ImageMetadata holds the EXIF fields the pipeline cares about. Coordinates
// are kept as degrees/minutes/seconds triples with their hemisphere reference.
type ImageMetadata struct {
	CreatedAt    string
	LatitudeRef  string
	Latitude     [3]float64
	LongitudeRef string
	Longitude    [3]float64
	Make         string
	Model        string
}
