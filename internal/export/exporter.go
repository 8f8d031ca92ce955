// Package export archives a user's summit photos from the backend into
// S3-compatible storage. Exports are resumable through a journal and
// retried on transient storage errors.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/config"
	"github.com/peekapeak/peekctl/internal/journal"
	"github.com/peekapeak/peekctl/internal/logger"
	"github.com/peekapeak/peekctl/internal/progress"
	"github.com/peekapeak/peekctl/internal/worker"
	"github.com/peekapeak/peekctl/pkg/s3client"
)

// PhotoSource is the backend side of an export: the photo listing and
// the binary download
type PhotoSource interface {
	AllPhotosByUser(ctx context.Context, username string, opts api.ListOptions) ([]api.SummitPhoto, error)
	OpenUpload(ctx context.Context, fileName string) (io.ReadCloser, int64, error)
}

// Exporter copies a user's photos into an S3 bucket
type Exporter struct {
	ctx      context.Context
	source   PhotoSource
	storage  s3client.Interface
	journal  *journal.Journal
	pool     *worker.Pool
	progress *progress.Reporter
	cfg      config.ExportConfig
	retry    RetryConfig
}

// New creates an Exporter
func New(ctx context.Context, source PhotoSource, storage s3client.Interface,
	jnl *journal.Journal, pool *worker.Pool, reporter *progress.Reporter,
	cfg config.ExportConfig) *Exporter {
	return &Exporter{
		ctx:      ctx,
		source:   source,
		storage:  storage,
		journal:  jnl,
		pool:     pool,
		progress: reporter,
		cfg:      cfg,
		retry:    DefaultRetryConfig(),
	}
}

// Run archives every photo of the given user
func (e *Exporter) Run(username string) error {
	photos, err := e.source.AllPhotosByUser(e.ctx, username, api.ListOptions{PerPage: 100})
	if err != nil {
		return fmt.Errorf("failed to list photos: %w", err)
	}

	e.progress.Start(len(photos))

	var wg sync.WaitGroup
	for _, photo := range photos {
		if e.ctx.Err() != nil {
			return e.ctx.Err()
		}

		if e.cfg.SkipExisting && e.journal.IsArchived(photo.FileName) {
			e.progress.Skip(photo.FileName)
			continue
		}

		if e.cfg.SkipExisting {
			exists, err := e.storage.ObjectExists(e.ctx, photo.FileName)
			if err != nil {
				logger.Warn("Failed to check if %s exists: %v", photo.FileName, err)
			} else if exists {
				e.progress.Skip(photo.FileName)
				e.journal.MarkArchived(photo.FileName, photo.ID)
				continue
			}
		}

		photo := photo
		wg.Add(1)
		e.pool.Submit(func() {
			defer wg.Done()

			if err := e.archivePhoto(photo); err != nil {
				logger.Error("Failed to archive %s: %v", photo.FileName, err)
				e.progress.Error(photo.FileName, err)
			} else {
				e.progress.Complete(photo.FileName)
				if !e.cfg.DryRun {
					e.journal.MarkArchived(photo.FileName, photo.ID)
				}
			}
		})
	}

	wg.Wait()
	e.progress.Finish()

	if e.cfg.DryRun {
		return nil
	}
	return e.journal.Save()
}

// archivePhoto downloads one photo from the backend and stores it in the
// bucket, with the photo's metadata attached as object metadata
func (e *Exporter) archivePhoto(photo api.SummitPhoto) error {
	reader, size, err := e.source.OpenUpload(e.ctx, photo.FileName)
	if err != nil {
		return fmt.Errorf("failed to download photo: %w", err)
	}

	metadata := objectMetadata(photo)
	contentType := s3client.DetectContentType(photo.FileName)

	if e.cfg.DryRun {
		reader.Close()
		logger.Info("DRY RUN: Would archive %s (%d bytes, %s) with %d metadata fields",
			photo.FileName, size, contentType, len(metadata))
		return nil
	}

	// The backend download stream is not seekable, so retries re-open it.
	// The closure owns the stream: each attempt closes the body it used
	// exactly once.
	err = RetryWithBackoff(e.ctx, "archive "+photo.FileName, func() error {
		if reader == nil {
			var err error
			reader, size, err = e.source.OpenUpload(e.ctx, photo.FileName)
			if err != nil {
				return fmt.Errorf("failed to re-download photo: %w", err)
			}
		}
		err := e.storage.UploadFile(e.ctx, reader, photo.FileName, size, metadata, contentType)
		reader.Close()
		reader = nil
		return err
	}, e.retry)

	if reader != nil {
		reader.Close()
	}
	return err
}

// objectMetadata flattens a photo record into S3 user metadata
func objectMetadata(photo api.SummitPhoto) map[string]string {
	metadata := map[string]string{
		"photo-id":    strconv.Itoa(photo.ID),
		"uploaded-at": photo.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if photo.CapturedAt != nil {
		metadata["captured-at"] = photo.CapturedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if photo.Lat != nil && photo.Lng != nil {
		metadata["lat"] = strconv.FormatFloat(*photo.Lat, 'f', -1, 64)
		metadata["lng"] = strconv.FormatFloat(*photo.Lng, 'f', -1, 64)
	}
	if photo.Peak != nil {
		metadata["peak"] = photo.Peak.Name
	}
	return metadata
}
