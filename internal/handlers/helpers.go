package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/service/media"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100

	// Multipart parsing buffer, larger files spill to disk
	maxMultipartMemory = 32 << 20
)

// pathUUID parses the named path segment as uuid.
// Renders 400 and returns false when it is not one
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and limit from the query with sane bounds
func pageParams(r *http.Request) (page int, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	switch {
	case limit < 1:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	return page, limit
}

// formUpload wraps the named multipart file for streaming to media storage.
// The caller must invoke the returned closer once the upload is done
func formUpload(r *http.Request, field string) (media.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return media.Upload{}, nil, err
	}

	upload := media.Upload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}

	return upload, func() { _ = file.Close() }, nil
}

// optionalFormUpload is formUpload for fields the client may omit
func optionalFormUpload(r *http.Request, field string) (*media.Upload, func(), error) {
	upload, closer, err := formUpload(r, field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return &upload, closer, nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		render.ServiceError(w, "Expected multipart/form-data body", http.StatusBadRequest)
		return false
	}
	return true
}

func internalError(w http.ResponseWriter, l logger.Logger, err error) {
	l.Error("request failed", "error", err.Error())
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
