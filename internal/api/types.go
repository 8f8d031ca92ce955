package api

import "time"

// User is the authenticated account record
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// UserCreate is the registration payload
type UserCreate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdate is a partial account update; nil fields are left unchanged
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// MountainRange is the range a peak belongs to
type MountainRange struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Peak is a known summit as supplied by the backend
type Peak struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`

	MountainRange *MountainRange `json:"mountainRange,omitempty"`
}

// PeakCandidate is a peak bundled with its distance in meters from the
// queried coordinate
type PeakCandidate struct {
	Peak     Peak    `json:"peak"`
	Distance float64 `json:"distance"`
}

// SummitPhoto is a photo record owned by the server
type SummitPhoto struct {
	ID         int        `json:"id"`
	FileName   string     `json:"fileName"`
	UploadedAt time.Time  `json:"uploadedAt"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
	Lat        *float64   `json:"lat,omitempty"`
	Lng        *float64   `json:"lng,omitempty"`
	Alt        *float64   `json:"alt,omitempty"`
	PeakID     *int       `json:"peakId,omitempty"`
	OwnerID    int        `json:"ownerId"`

	Peak *Peak `json:"peak,omitempty"`
}

// SummitPhotoCreate is the metadata half of the photo upload request
type SummitPhotoCreate struct {
	CapturedAt time.Time `json:"capturedAt"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	Alt        *float64  `json:"alt,omitempty"`
	PeakID     *int      `json:"peakId,omitempty"`
}

// PhotoLocation is a bare coordinate of one photo, used for map layers
type PhotoLocation struct {
	ID  int     `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PhotoDate is a capture date of one photo, used for activity calendars
type PhotoDate struct {
	ID         int       `json:"id"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Items   []T `json:"items"`
}

// NextPage returns the following page number, or false once the items
// seen so far cover the total
func (p Page[T]) NextPage() (int, bool) {
	if (p.Page-1)*p.PerPage+len(p.Items) >= p.Total {
		return 0, false
	}
	return p.Page + 1, true
}

// ListOptions are the query parameters of a photo listing
type ListOptions struct {
	SortBy  string
	Order   string
	Page    int
	PerPage int
}
