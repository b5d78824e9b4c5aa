package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/npezzotti/smartshop/internal/ocr"
	"github.com/npezzotti/smartshop/internal/stats"
	"github.com/npezzotti/smartshop/internal/uploads"
)

const sniffLen = 512

type UploadResponse struct {
	URL string `json:"url"`
}

type StoreInfo struct {
	Address string `json:"address"`
}

type PosterResponse struct {
	Products  []ocr.ExtractedProduct `json:"products"`
	PosterURL string                 `json:"posterUrl"`
	StoreInfo StoreInfo              `json:"storeInfo"`
}

// imageUpload is a multipart image whose content type has been sniffed.
type imageUpload struct {
	file        multipart.File
	header      *multipart.FileHeader
	contentType string
	body        io.Reader
}

func (u *imageUpload) Close() error {
	return u.file.Close()
}

// readImage parses the multipart form and returns the image sent in
// field. It writes the error response itself and reports false on failure.
func (s *App) readImage(w http.ResponseWriter, r *http.Request, field string) (*imageUpload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxUploadSize)
	if err := r.ParseMultipartForm(uploads.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, NewRequestTooLargeError())
			return nil, false
		}
		s.writeError(w, r, NewBadRequestError().WithMessage("invalid multipart form"))
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeError(w, r, NewBadRequestError().WithMessage("no file uploaded"))
		return nil, false
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		s.writeError(w, r, NewInternalServerError(err))
		return nil, false
	}
	head = head[:n]

	contentType, err := uploads.DetectImage(head)
	if err != nil {
		file.Close()
		s.writeError(w, r, NewBadRequestError().WithMessage(err.Error()))
		return nil, false
	}

	return &imageUpload{
		file:        file,
		header:      header,
		contentType: contentType,
		body:        io.MultiReader(bytes.NewReader(head), file),
	}, true
}

func (s *App) uploadFile(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readImage(w, r, "file")
	if !ok {
		return
	}
	defer img.Close()

	key := uploads.NewKey("images", img.header.Filename, img.contentType)
	url, err := s.files.Save(r.Context(), key, img.body, img.header.Size, img.contentType)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, UploadResponse{URL: url})
}

func (s *App) uploadPoster(w http.ResponseWriter, r *http.Request) {
	store, ok := s.loadManagedStore(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	img, ok := s.readImage(w, r, "poster")
	if !ok {
		return
	}
	defer img.Close()

	tmp, err := os.CreateTemp("", "poster-*")
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, img.body)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	key := uploads.NewKey("posters/"+store.Id, img.header.Filename, img.contentType)
	posterURL, err := s.files.Save(r.Context(), key, tmp, size, img.contentType)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	result, err := s.posters.Process(r.Context(), tmp.Name())
	if err != nil {
		var ocrErr *ocr.Error
		if errors.As(err, &ocrErr) {
			s.writeError(w, r, NewBadGatewayError(err).WithMessage("failed to process poster"))
			return
		}
		s.writeError(w, r, NewInternalServerError(err))
		return
	}
	s.incr(stats.PostersProcessed)

	products := result.Products
	if products == nil {
		products = []ocr.ExtractedProduct{}
	}

	s.writeJson(w, http.StatusOK, PosterResponse{
		Products:  products,
		PosterURL: posterURL,
		StoreInfo: StoreInfo{Address: result.StoreAddress},
	})
}
