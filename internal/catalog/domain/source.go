package domain

import (
	"fmt"
	"strings"
)

// SourceType is the acquisition strategy of an episode's video.
type SourceType string

const (
	SourceDirect SourceType = "direct"
	SourceDrive  SourceType = "gdrive"
	SourceUpload SourceType = "upload"
)

// ParseSourceType maps a form or column value onto a SourceType.
func ParseSourceType(value string) (SourceType, error) {
	switch t := SourceType(strings.TrimSpace(value)); t {
	case SourceDirect, SourceDrive, SourceUpload:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSourceType, value)
	}
}

// Source is where an episode's video comes from. Exactly one of the concrete
// types below implements it; each carries only its own payload.
type Source interface {
	Type() SourceType
	isSource()
}

// DirectSource is an external video URL stored verbatim.
type DirectSource struct {
	URL string
}

// DriveSource is a Google Drive file fetched to local storage.
type DriveSource struct {
	DriveID  string
	FilePath string // relative to the base directory
}

// UploadSource is a file uploaded by the admin.
type UploadSource struct {
	FilePath string // relative to the base directory
}

func (DirectSource) Type() SourceType { return SourceDirect }
func (DriveSource) Type() SourceType  { return SourceDrive }
func (UploadSource) Type() SourceType { return SourceUpload }

func (DirectSource) isSource() {}
func (DriveSource) isSource()  {}
func (UploadSource) isSource() {}

// LocalPath returns the stored file path of sources backed by a local file.
func LocalPath(src Source) (string, bool) {
	switch s := src.(type) {
	case DriveSource:
		return s.FilePath, s.FilePath != ""
	case UploadSource:
		return s.FilePath, s.FilePath != ""
	default:
		return "", false
	}
}

// SourceColumns is the flat storage form of a Source.
type SourceColumns struct {
	SourceType string
	VideoURL   *string
	DriveID    *string
	FilePath   *string
}

// ToColumns flattens src, validating it on the way.
func ToColumns(src Source) (SourceColumns, error) {
	if err := ValidateSource(src); err != nil {
		return SourceColumns{}, err
	}
	switch s := src.(type) {
	case DirectSource:
		return SourceColumns{SourceType: string(SourceDirect), VideoURL: &s.URL}, nil
	case DriveSource:
		return SourceColumns{SourceType: string(SourceDrive), DriveID: &s.DriveID, FilePath: &s.FilePath}, nil
	case UploadSource:
		return SourceColumns{SourceType: string(SourceUpload), FilePath: &s.FilePath}, nil
	}
	return SourceColumns{}, ErrInvalidSource
}

// SourceFromColumns rebuilds a Source from stored columns. A row must carry a
// video URL or a file path, never both, as dictated by its source type.
func SourceFromColumns(c SourceColumns) (Source, error) {
	t, err := ParseSourceType(c.SourceType)
	if err != nil {
		return nil, err
	}

	videoURL, filePath := deref(c.VideoURL), deref(c.FilePath)
	if (videoURL == "") == (filePath == "") {
		return nil, fmt.Errorf("%w: %s row needs exactly one of video_url and file_path", ErrInvalidSource, t)
	}

	var src Source
	switch t {
	case SourceDirect:
		src = DirectSource{URL: videoURL}
	case SourceDrive:
		src = DriveSource{DriveID: deref(c.DriveID), FilePath: filePath}
	case SourceUpload:
		src = UploadSource{FilePath: filePath}
	}
	if err := ValidateSource(src); err != nil {
		return nil, err
	}
	return src, nil
}

// ValidateSource checks that src carries the payload its type requires.
func ValidateSource(src Source) error {
	switch s := src.(type) {
	case DirectSource:
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("%w: direct source needs a video url", ErrInvalidSource)
		}
	case DriveSource:
		if s.DriveID == "" || s.FilePath == "" {
			return fmt.Errorf("%w: drive source needs a drive id and a file path", ErrInvalidSource)
		}
	case UploadSource:
		if s.FilePath == "" {
			return fmt.Errorf("%w: upload source needs a file path", ErrInvalidSource)
		}
	default:
		return ErrInvalidSource
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
