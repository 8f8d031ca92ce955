// Package upload implements the photo-upload workflow: the mutable
// draft, the step sequencer and the wizard that threads one draft
// through photo selection, review and submission.
package upload

import (
	"math"
	"time"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/exif"
)

// materialMoveMeters is how far the coordinate may move before an
// attached peak selection is considered stale and cleared
const materialMoveMeters = 100.0

// Draft is the working record for one upload session. It is owned by a
// single wizard and mutated only by the active step.
type Draft struct {
	fileName string
	fileData []byte

	capturedAt *time.Time
	lat        *float64
	lng        *float64
	alt        *float64

	peak *api.Peak
}

// NewDraft creates an empty draft for a freshly attached file
func NewDraft(fileName string, fileData []byte) *Draft {
	return &Draft{fileName: fileName, fileData: fileData}
}

// FileName returns the attached file's name
func (d *Draft) FileName() string {
	return d.fileName
}

// FileData returns the attached image bytes
func (d *Draft) FileData() []byte {
	return d.fileData
}

// applyMetadata merges extracted metadata into the draft. A field is
// adopted only when the draft does not already hold a value, so user
// edits are never discarded. Coordinates are adopted as a pair.
func (d *Draft) applyMetadata(meta exif.Metadata) {
	if d.capturedAt == nil && meta.CapturedAt != nil {
		t := *meta.CapturedAt
		d.capturedAt = &t
	}
	if d.lat == nil && d.lng == nil && meta.HasLocation() {
		lat, lng := *meta.Latitude, *meta.Longitude
		d.lat, d.lng = &lat, &lng
		if meta.Altitude != nil {
			alt := *meta.Altitude
			d.alt = &alt
		}
	}
}

// CapturedAt returns the capture time, or false when unset
func (d *Draft) CapturedAt() (time.Time, bool) {
	if d.capturedAt == nil {
		return time.Time{}, false
	}
	return *d.capturedAt, true
}

// SetCapturedAt records a user-chosen capture time
func (d *Draft) SetCapturedAt(t time.Time) {
	d.capturedAt = &t
}

// Location returns the coordinate pair. A partial pair counts as no
// location.
func (d *Draft) Location() (lat, lng float64, ok bool) {
	if d.lat == nil || d.lng == nil {
		return 0, 0, false
	}
	return *d.lat, *d.lng, true
}

// Altitude returns the altitude, meaningful only alongside a location
func (d *Draft) Altitude() (float64, bool) {
	if d.alt == nil || d.lat == nil || d.lng == nil {
		return 0, false
	}
	return *d.alt, true
}

// SetLocation moves the coordinate pair. Moving materially away from the
// previous spot drops the attached peak so a stale selection cannot
// survive a location edit.
func (d *Draft) SetLocation(lat, lng float64, alt *float64) {
	if prevLat, prevLng, ok := d.Location(); ok {
		if haversineMeters(prevLat, prevLng, lat, lng) > materialMoveMeters {
			d.peak = nil
		}
	}
	d.lat, d.lng = &lat, &lng
	d.alt = alt
}

// ClearLocation removes the coordinate pair and any peak selection
func (d *Draft) ClearLocation() {
	d.lat, d.lng, d.alt = nil, nil, nil
	d.peak = nil
}

// Peak returns the confirmed summit, or nil
func (d *Draft) Peak() *api.Peak {
	return d.peak
}

// SetPeak attaches (or with nil detaches) a confirmed summit. A peak can
// only be held while a location is present.
func (d *Draft) SetPeak(peak *api.Peak) {
	if peak != nil {
		if _, _, ok := d.Location(); !ok {
			return
		}
	}
	d.peak = peak
}

// CreateRequest builds the submission payload from the finalized draft
func (d *Draft) CreateRequest() api.SummitPhotoCreate {
	create := api.SummitPhotoCreate{}
	if d.capturedAt != nil {
		create.CapturedAt = *d.capturedAt
	}
	if lat, lng, ok := d.Location(); ok {
		create.Lat, create.Lng = &lat, &lng
		if alt, ok := d.Altitude(); ok {
			create.Alt = &alt
		}
	}
	if d.peak != nil {
		id := d.peak.ID
		create.PeakID = &id
	}
	return create
}

// haversineMeters is the great-circle distance between two coordinates
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusM = 6371000.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}
