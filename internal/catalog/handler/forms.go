package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/ingest"
	"github.com/narwhalmedia/catalog/internal/catalog/service"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

// form is a parsed admin form. Close releases uploaded files and any
// temporary files the multipart reader created.
type form struct {
	r     *http.Request
	files []multipart.File
}

// parseForm reads an admin form. Uploads can take far longer than the
// server's read and write timeouts, so both deadlines are lifted first.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Time{}); err != nil {
		h.log(r).Debug("Could not lift read deadline", interfaces.Error(err))
	}
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log(r).Debug("Could not lift write deadline", interfaces.Error(err))
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return &form{r: r}, nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, pkgerrors.BadRequest("the upload is larger than the server accepts")
	}
	return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "the form could not be read", err)
}

func (f *form) value(key string) string {
	return strings.TrimSpace(f.r.FormValue(key))
}

// file returns the uploaded file of a field, or nil when none was chosen.
func (f *form) file(key string) (*ingest.FileUpload, error) {
	file, header, err := f.r.FormFile(key)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "the uploaded file could not be read", err)
	}
	f.files = append(f.files, file)
	if header.Filename == "" {
		return nil, nil
	}
	return &ingest.FileUpload{Filename: header.Filename, Reader: file}, nil
}

func (f *form) Close() {
	for _, file := range f.files {
		_ = file.Close()
	}
	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}

func (f *form) cover() (service.Cover, error) {
	upload, err := f.file("thumbnail_file")
	if err != nil {
		return service.Cover{}, err
	}
	return service.Cover{Upload: upload, URL: f.value("thumbnail_url")}, nil
}

func (f *form) seriesInput() (service.SeriesInput, error) {
	cover, err := f.cover()
	if err != nil {
		return service.SeriesInput{}, err
	}
	return service.SeriesInput{
		Title:       f.value("title"),
		Description: f.value("description"),
		Cover:       cover,
	}, nil
}

func (f *form) episodeInput() (service.EpisodeInput, error) {
	number, err := parseEpisodeNumber(f.value("episode_number"))
	if err != nil {
		return service.EpisodeInput{}, err
	}

	mode := f.value("mode")
	if mode == "" {
		mode = string(domain.SourceDirect)
	}
	source := ingest.Request{
		Mode:      mode,
		VideoURL:  f.value("video_url"),
		DriveLink: f.value("drive_link"),
	}
	if mode == string(domain.SourceUpload) {
		if source.Upload, err = f.file("file"); err != nil {
			return service.EpisodeInput{}, err
		}
	}

	cover, err := f.cover()
	if err != nil {
		return service.EpisodeInput{}, err
	}

	return service.EpisodeInput{
		Title:         f.value("title"),
		Description:   f.value("description"),
		EpisodeNumber: number,
		Source:        source,
		Cover:         cover,
	}, nil
}

func parseEpisodeNumber(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, pkgerrors.Validation("episode number must be a whole number")
	}
	return &n, nil
}

func parseID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
