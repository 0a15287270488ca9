package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

const (
	// DefaultVideoExt is used for uploads and Drive files without an extension.
	DefaultVideoExt = ".mp4"
	// DefaultCoverExt is used for cover uploads without an extension.
	DefaultCoverExt = ".jpg"

	// CoverURLPrefix is where the cover root is served.
	CoverURLPrefix = "/static/"
)

var errOutsideRoot = errors.New("path escapes storage root")

// Config locates the storage roots. VideoDir and CoverDir are joined to
// BaseDir unless absolute.
type Config struct {
	BaseDir  string
	VideoDir string
	CoverDir string
}

// CleanupResult reports one best-effort removal. Err is informational; the
// store has already logged and counted it.
type CleanupResult struct {
	Path    string
	Removed bool
	Skipped bool
	Err     error
}

// Store lays out video files and cover images on the local file system.
//
//	{base}/{video}/series_{id}/...           video files, stored relative to base
//	{base}/{cover}/covers/series_{id}/...    series covers, stored relative to the cover root
//	{base}/{cover}/covers/episodes/ep_{id}/  episode covers
type Store struct {
	baseDir  string
	videoDir string
	coverDir string
	logger   interfaces.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewStore resolves the roots to absolute paths and creates them.
func NewStore(cfg Config, log interfaces.Logger, m *metrics.Metrics) (*Store, error) {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}

	s := &Store{
		baseDir:  base,
		videoDir: underBase(base, cfg.VideoDir, "video_files"),
		coverDir: underBase(base, cfg.CoverDir, "static"),
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}

	for _, dir := range []string{s.videoDir, s.coverDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
		}
	}
	return s, nil
}

func underBase(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// BaseDir returns the absolute base directory.
func (s *Store) BaseDir() string { return s.baseDir }

// CoverRoot returns the absolute directory served at CoverURLPrefix.
func (s *Store) CoverRoot() string { return s.coverDir }

// SeriesVideoDir returns the absolute directory holding a series' videos.
func (s *Store) SeriesVideoDir(seriesID int64) string {
	return filepath.Join(s.videoDir, fmt.Sprintf("series_%d", seriesID))
}

// DriveVideoPath returns the absolute destination of a Drive file. The same
// Drive id in the same series always maps to the same path.
func (s *Store) DriveVideoPath(seriesID int64, driveID string) string {
	return filepath.Join(s.SeriesVideoDir(seriesID), SafeBaseName(driveID)+DefaultVideoExt)
}

// Rel converts an absolute path under the base directory into its stored,
// slash-separated form.
func (s *Store) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(s.baseDir, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, abs)
	}
	return filepath.ToSlash(rel), nil
}

// ResolveVideo maps a stored file path to an absolute path. Absolute values
// are returned unchanged; others are taken relative to the base directory.
func (s *Store) ResolveVideo(stored string) string {
	p := filepath.FromSlash(stored)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.baseDir, p)
}

// CoverURL returns the URL a template should use for a stored thumbnail.
func CoverURL(stored string) string {
	if stored == "" || domain.IsExternalURL(stored) {
		return stored
	}
	return CoverURLPrefix + strings.TrimPrefix(stored, "/")
}

func seriesCoverRel(seriesID int64) string {
	return path.Join("covers", fmt.Sprintf("series_%d", seriesID))
}

func episodeCoverRel(episodeID int64) string {
	return path.Join("covers", "episodes", fmt.Sprintf("ep_%d", episodeID))
}

// SaveVideo writes an uploaded video under the series directory and returns
// its stored path.
func (s *Store) SaveVideo(seriesID int64, filename string, r io.Reader) (string, error) {
	dir := s.SeriesVideoDir(seriesID)
	abs, err := s.write(dir, UniqueName(filename, DefaultVideoExt, s.now()), r)
	if err != nil {
		return "", err
	}
	return s.Rel(abs)
}

// SaveSeriesCover writes an uploaded series cover and returns its stored
// value, relative to the cover root.
func (s *Store) SaveSeriesCover(seriesID int64, filename string, r io.Reader) (string, error) {
	return s.saveCover(seriesCoverRel(seriesID), filename, r)
}

// SaveEpisodeCover writes an uploaded episode cover and returns its stored
// value, relative to the cover root.
func (s *Store) SaveEpisodeCover(episodeID int64, filename string, r io.Reader) (string, error) {
	return s.saveCover(episodeCoverRel(episodeID), filename, r)
}

func (s *Store) saveCover(relDir, filename string, r io.Reader) (string, error) {
	name := UniqueName(filename, DefaultCoverExt, s.now())
	if _, err := s.write(filepath.Join(s.coverDir, filepath.FromSlash(relDir)), name, r); err != nil {
		return "", err
	}
	return path.Join(relDir, name), nil
}

func (s *Store) write(dir, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	abs := filepath.Join(dir, name)
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(abs)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Stored file", interfaces.String("path", abs))
	return abs, nil
}

// RemoveCover deletes a stored cover. External URLs and empty values are
// skipped, as is anything that resolves outside the cover root.
func (s *Store) RemoveCover(stored string) CleanupResult {
	if stored == "" || domain.IsExternalURL(stored) {
		return CleanupResult{Path: stored, Skipped: true}
	}
	abs := filepath.Join(s.coverDir, filepath.FromSlash(strings.TrimPrefix(stored, "/")))
	if !within(s.coverDir, abs) {
		return s.failed("cover", abs, fmt.Errorf("%w: %s", errOutsideRoot, stored))
	}
	return s.removeFile("cover", abs)
}

// RemoveVideo deletes a stored video file. Paths outside the base directory
// are refused.
func (s *Store) RemoveVideo(stored string) CleanupResult {
	if stored == "" {
		return CleanupResult{Skipped: true}
	}
	abs := s.ResolveVideo(stored)
	if !within(s.baseDir, abs) {
		return s.failed("video", abs, fmt.Errorf("%w: %s", errOutsideRoot, stored))
	}
	return s.removeFile("video", abs)
}

// RemoveEpisodeCoverDir removes the per-episode cover directory when it is
// empty.
func (s *Store) RemoveEpisodeCoverDir(episodeID int64) CleanupResult {
	return s.removeEmptyDir(filepath.Join(s.coverDir, filepath.FromSlash(episodeCoverRel(episodeID))))
}

// RemoveSeriesDirs removes the series cover and video directories when they
// are empty.
func (s *Store) RemoveSeriesDirs(seriesID int64) []CleanupResult {
	return []CleanupResult{
		s.removeEmptyDir(filepath.Join(s.coverDir, filepath.FromSlash(seriesCoverRel(seriesID)))),
		s.removeEmptyDir(s.SeriesVideoDir(seriesID)),
	}
}

func (s *Store) removeFile(kind, abs string) CleanupResult {
	err := os.Remove(abs)
	switch {
	case err == nil:
		s.logger.Debug("Removed file", interfaces.String("kind", kind), interfaces.String("path", abs))
		return CleanupResult{Path: abs, Removed: true}
	case errors.Is(err, os.ErrNotExist):
		return CleanupResult{Path: abs, Skipped: true}
	default:
		return s.failed(kind, abs, err)
	}
}

func (s *Store) removeEmptyDir(abs string) CleanupResult {
	err := os.Remove(abs)
	switch {
	case err == nil:
		return CleanupResult{Path: abs, Removed: true}
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EEXIST):
		return CleanupResult{Path: abs, Skipped: true}
	default:
		return s.failed("dir", abs, err)
	}
}

func (s *Store) failed(kind, abs string, err error) CleanupResult {
	s.logger.Warn("File cleanup failed",
		interfaces.String("kind", kind),
		interfaces.String("path", abs),
		interfaces.Error(err))
	s.metrics.CleanupFailed(kind)
	return CleanupResult{Path: abs, Err: err}
}

func within(root, abs string) bool {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
