package exiftool

import (
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"spectrum/internal/services"
)

// TagSummary reports the metadata groups found in a written JPEG.
type TagSummary struct {
	TagCount     int  `json:"tag_count"`
	HasGPS       bool `json:"has_gps"`
	HasModel     bool `json:"has_model"`
	HasTimestamp bool `json:"has_timestamp"`
}

// Verify inspects the EXIF block of the file at path and summarizes the key
// tag groups a metadata copy is expected to carry over. A file without any
// EXIF block yields a zero summary, not an error.
func Verify(path string) (TagSummary, error) {
	summary := TagSummary{}

	file, err := os.Open(path)
	if err != nil {
		return summary, services.Wrap(services.ErrMetadata, "exiftool", "verify", "cannot open output", err)
	}
	defer file.Close()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(file, nil, true)
	if err != nil {
		if isNoExif(err) {
			return summary, nil
		}
		return summary, services.Wrap(services.ErrMetadata, "exiftool", "verify", "cannot parse EXIF", err)
	}

	summary.TagCount = len(tags)
	for _, tag := range tags {
		if strings.HasPrefix(tag.TagName, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			summary.HasGPS = true
		}
		if tag.TagName == "Model" {
			summary.HasModel = true
		}
		switch tag.TagName {
		case "DateTimeOriginal", "DateTimeDigitized", "DateTime":
			summary.HasTimestamp = true
		}
	}
	return summary, nil
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
