package httpadapter

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

const uploadField = "files"

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := rt.documents.ListDocuments(r.Context(), userFromContext(r.Context()), domain.DocumentListFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	detail, err := rt.documents.GetDocument(r.Context(), userFromContext(r.Context()), pathID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// uploadDocuments runs one ingestion batch over every multipart "files" part.
// A failed batch still reports the per-file outcomes next to the error.
func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	headers, err := rt.multipartFiles(w, r, uploadField)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	files, closeAll, err := openParts(headers)
	defer closeAll()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	result, err := rt.ingest.UploadBatch(r.Context(), userFromContext(r.Context()), files)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		body := errorBody(status, err)
		if result != nil {
			body["files"] = result.Files
			body["documents"] = result.Documents
			body["ok"] = false
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) multipartFiles(w http.ResponseWriter, r *http.Request, field string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if mapErrorToHTTPStatus(err) == http.StatusRequestEntityTooLarge {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse upload", err)
	}
	return r.MultipartForm.File[field], nil
}

func openParts(headers []*multipart.FileHeader) ([]domain.UploadFile, func(), error) {
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, closeAll, domain.WrapError(domain.ErrInvalidInput, "open upload", fmt.Errorf("%s: %w", h.Filename, err))
		}
		opened = append(opened, f)
		files = append(files, domain.UploadFile{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return files, closeAll, nil
}
