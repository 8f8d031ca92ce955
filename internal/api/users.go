package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetUser fetches a public user profile
func (c *Client) GetUser(ctx context.Context, username string) (User, error) {
	var user User
	err := c.get(ctx, "/users/"+url.PathEscape(username), &user)
	return user, err
}

// UpdateUser applies a partial account update
func (c *Client) UpdateUser(ctx context.Context, username string, update UserUpdate) (User, error) {
	var user User
	err := c.patch(ctx, "/users/"+url.PathEscape(username), update, &user)
	return user, err
}

// CheckAccess probes whether the caller may view the user's diary. A nil
// error means access is granted; 403/404 come back as typed errors.
func (c *Client) CheckAccess(ctx context.Context, username string) error {
	return c.get(ctx, "/users/"+url.PathEscape(username)+"/access", nil)
}

// PhotosByUser lists a user's photos one page at a time
func (c *Client) PhotosByUser(ctx context.Context, username string, opts ListOptions) (Page[SummitPhoto], error) {
	params := url.Values{}
	if opts.SortBy != "" {
		params.Set("sortBy", opts.SortBy)
	}
	if opts.Order != "" {
		params.Set("order", opts.Order)
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		params.Set("perPage", strconv.Itoa(opts.PerPage))
	}

	path := fmt.Sprintf("/users/%s/photos", url.PathEscape(username))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page Page[SummitPhoto]
	err := c.get(ctx, path, &page)
	return page, err
}

// AllPhotosByUser walks the paginated listing until NextPage is exhausted
func (c *Client) AllPhotosByUser(ctx context.Context, username string, opts ListOptions) ([]SummitPhoto, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}

	var photos []SummitPhoto
	for {
		page, err := c.PhotosByUser(ctx, username, opts)
		if err != nil {
			return nil, err
		}
		photos = append(photos, page.Items...)

		next, ok := page.NextPage()
		if !ok {
			return photos, nil
		}
		opts.Page = next
	}
}

// PhotoLocationsByUser returns the coordinates of all of a user's photos
func (c *Client) PhotoLocationsByUser(ctx context.Context, username string) ([]PhotoLocation, error) {
	var locations []PhotoLocation
	err := c.get(ctx, "/users/"+url.PathEscape(username)+"/photos/locations", &locations)
	return locations, err
}

// PhotoDatesByUser returns the capture dates of all of a user's photos
func (c *Client) PhotoDatesByUser(ctx context.Context, username string) ([]PhotoDate, error) {
	var dates []PhotoDate
	err := c.get(ctx, "/users/"+url.PathEscape(username)+"/photos/dates", &dates)
	return dates, err
}

// SummitedPeaksCount returns how many distinct peaks the user has summited
func (c *Client) SummitedPeaksCount(ctx context.Context, username string) (int, error) {
	var count int
	err := c.get(ctx, "/users/"+url.PathEscape(username)+"/peaks/count", &count)
	return count, err
}
