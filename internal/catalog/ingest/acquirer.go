// Package ingest turns an "add episode" submission into a stored video
// source: a direct URL kept verbatim, a Google Drive file fetched to disk, or
// an uploaded file written to disk.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/narwhalmedia/catalog/internal/catalog/assets"
	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/metrics"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// driveIDPattern is the alphabet of Drive file ids. Ids are used verbatim as
// file names, so anything else is rejected rather than rewritten.
var driveIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileUpload is an uploaded file as received from a multipart form.
type FileUpload struct {
	Filename string
	Reader   io.Reader
}

// Request describes how the video of a new episode is acquired. Only the
// field matching Mode is read.
type Request struct {
	Mode      string
	VideoURL  string
	DriveLink string
	Upload    *FileUpload
}

// Validate checks the request without touching the network or the disk.
func (r Request) Validate() error {
	mode, err := domain.ParseSourceType(r.Mode)
	if err != nil {
		return pkgerrors.BadRequest("unknown video source mode")
	}

	switch mode {
	case domain.SourceDirect:
		if strings.TrimSpace(r.VideoURL) == "" {
			return pkgerrors.BadRequest("enter the video URL")
		}
	case domain.SourceDrive:
		id, ok := domain.ExtractDriveID(r.DriveLink)
		if !ok {
			return pkgerrors.BadRequest("could not read a Google Drive file id from the link")
		}
		if !driveIDPattern.MatchString(id) {
			return pkgerrors.BadRequest("the Google Drive file id may only contain letters, digits, '-' and '_'")
		}
	case domain.SourceUpload:
		if r.Upload == nil || r.Upload.Reader == nil || r.Upload.Filename == "" {
			return pkgerrors.BadRequest("choose a video file to upload")
		}
	}
	return nil
}

// Acquirer resolves ingest requests into episode sources.
type Acquirer struct {
	store   *assets.Store
	fetcher DriveFetcher
	timeout time.Duration
	logger  interfaces.Logger
	metrics *metrics.Metrics
}

// NewAcquirer creates an acquirer. timeout bounds a single Drive fetch; zero
// leaves it to the request context.
func NewAcquirer(store *assets.Store, fetcher DriveFetcher, timeout time.Duration, log interfaces.Logger, m *metrics.Metrics) *Acquirer {
	return &Acquirer{
		store:   store,
		fetcher: fetcher,
		timeout: timeout,
		logger:  log,
		metrics: m,
	}
}

// Acquire validates req and produces the source of a new episode in
// seriesID. Stored file paths are relative to the base directory.
func (a *Acquirer) Acquire(ctx context.Context, seriesID int64, req Request) (domain.Source, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mode, _ := domain.ParseSourceType(req.Mode)

	var (
		src domain.Source
		err error
	)
	switch mode {
	case domain.SourceDirect:
		src = domain.DirectSource{URL: strings.TrimSpace(req.VideoURL)}
		a.metrics.ObserveIngest(string(mode), metrics.ResultSuccess)
	case domain.SourceDrive:
		src, err = a.acquireDrive(ctx, seriesID, req.DriveLink)
	case domain.SourceUpload:
		src, err = a.acquireUpload(seriesID, req.Upload)
	}
	if err != nil {
		a.metrics.ObserveIngest(string(mode), metrics.ResultFailure)
		return nil, err
	}
	return src, nil
}

func (a *Acquirer) acquireUpload(seriesID int64, upload *FileUpload) (domain.Source, error) {
	rel, err := a.store.SaveVideo(seriesID, upload.Filename, upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded video: %w", err)
	}

	a.logger.Info("Stored uploaded video",
		interfaces.Int64("series_id", seriesID),
		interfaces.String("path", rel))
	a.metrics.ObserveIngest(string(domain.SourceUpload), metrics.ResultSuccess)
	return domain.UploadSource{FilePath: rel}, nil
}

func (a *Acquirer) acquireDrive(ctx context.Context, seriesID int64, link string) (domain.Source, error) {
	driveID, _ := domain.ExtractDriveID(link)
	dest := a.store.DriveVideoPath(seriesID, driveID)
	rel, err := a.store.Rel(dest)
	if err != nil {
		return nil, err
	}
	src := domain.DriveSource{DriveID: driveID, FilePath: rel}

	log := a.logger.WithFields(
		interfaces.String("drive_id", driveID),
		interfaces.Int64("series_id", seriesID))

	if exists(dest) {
		log.Info("Drive file already present, skipping fetch", interfaces.String("path", rel))
		a.metrics.ObserveIngest(string(domain.SourceDrive), metrics.ResultSkipped)
		return src, nil
	}

	if err := a.fetchTo(ctx, driveID, dest); err != nil {
		log.Error("Drive fetch failed", interfaces.Error(err))
		return nil, pkgerrors.External("Google Drive download failed", err)
	}
	if !exists(dest) {
		return nil, pkgerrors.External("Google Drive download failed", errors.New("downloaded file not found"))
	}

	log.Info("Fetched Drive file", interfaces.String("path", rel))
	a.metrics.ObserveIngest(string(domain.SourceDrive), metrics.ResultSuccess)
	return src, nil
}

// fetchTo downloads into a temporary file next to dest and renames it into
// place, so dest only ever holds a complete download.
func (a *Acquirer) fetchTo(ctx context.Context, driveID, dest string) error {
	if a.fetcher == nil {
		return errors.New("no Drive fetcher configured")
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	fetchErr := a.fetcher.Fetch(ctx, driveID, tmp)
	a.metrics.ObserveDriveFetch(time.Since(start))

	closeErr := tmp.Close()
	if fetchErr == nil {
		fetchErr = closeErr
	}
	if fetchErr != nil {
		os.Remove(tmpPath)
		return fetchErr
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
