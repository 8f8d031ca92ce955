// internal/exif/exif.go
package exif

import (
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/peekapeak/peekctl/internal/logger"
)

// exifTimeLayout is the timestamp format used by EXIF date tags
const exifTimeLayout = "2006:01:02 15:04:05"

// Metadata is the best-effort record extracted from an image. Fields the
// image lacks are nil.
type Metadata struct {
	CapturedAt *time.Time
	Latitude   *float64
	Longitude  *float64
	Altitude   *float64
}

// HasLocation reports whether both coordinates were extracted
func (m Metadata) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Extract reads EXIF metadata from an image. Extraction is advisory:
// corrupt input, unsupported formats and missing EXIF blocks all produce
// an empty Metadata, never an error.
func Extract(r io.Reader) Metadata {
	var meta Metadata

	x, err := exif.Decode(r)
	if err != nil {
		logger.Debug("No usable EXIF data: %v", err)
		return meta
	}

	if t, ok := captureTime(x); ok {
		meta.CapturedAt = &t
	}

	if lat, lng, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &lng

		if alt, err := x.Get(exif.GPSAltitude); err == nil {
			if rat, err := alt.Rat(0); err == nil && rat.Denom().Int64() != 0 {
				v := float64(rat.Num().Int64()) / float64(rat.Denom().Int64())
				meta.Altitude = &v
			}
		}
	}

	return meta
}

// captureTime reads DateTimeOriginal, falling back to DateTime. EXIF
// timestamps carry no zone; they are interpreted as UTC so the same file
// always yields the same instant.
func captureTime(x *exif.Exif) (time.Time, bool) {
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		t, err := time.Parse(exifTimeLayout, s)
		if err != nil {
			continue
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}
