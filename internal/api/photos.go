package api

import (
	"context"
	"fmt"
	"io"
)

// UploadPhoto creates a photo record from a file and its metadata. The
// request is multipart: the binary under "file", the metadata JSON under
// "summitPhotoCreate".
func (c *Client) UploadPhoto(ctx context.Context, file io.Reader, filename string, create SummitPhotoCreate) (SummitPhoto, error) {
	var photo SummitPhoto
	err := c.multipartUpload(ctx, "/photos", file, filename, "summitPhotoCreate", create, &photo)
	return photo, err
}

// DeletePhoto removes an uploaded photo by ID
func (c *Client) DeletePhoto(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/photos/%d", id), nil)
}
