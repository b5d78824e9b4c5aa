package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/ocr"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

// multipartRequest builds a request carrying content in field. An empty
// field sends a form without files.
func multipartRequest(t *testing.T, app *App, target, field, filename string, content []byte, as *types.User) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(content)
	} else {
		mw.WriteField("note", "no file")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, app, *as))
	}
	return req
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestUploadFile(t *testing.T) {
	tcases := []struct {
		name    string
		field   string
		content []byte
		as      *types.User
		status  int
	}{
		{name: "image upload", field: "file", content: pngImage, as: &owner, status: http.StatusOK},
		{name: "not an image", field: "file", content: []byte("hello, world"), as: &owner, status: http.StatusBadRequest},
		{name: "wrong field", field: "image", content: pngImage, as: &owner, status: http.StatusBadRequest},
		{name: "no file", as: &owner, status: http.StatusBadRequest},
		{name: "anonymous", field: "file", content: pngImage, status: http.StatusUnauthorized},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &database.MockRepository{}, nil)

			rr := serve(app, multipartRequest(t, app, "/api/uploads", tc.field, "avocado.png", tc.content, tc.as))

			assert.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				return
			}

			url := decodeBody[UploadResponse](t, rr).URL
			assert.True(t, strings.HasPrefix(url, "/uploads/images/"), "unexpected url %q", url)
			assert.True(t, strings.HasSuffix(url, ".png"), "unexpected url %q", url)

			// the stored file is served back from the same app
			get := serve(app, httptest.NewRequest(http.MethodGet, url, nil))
			assert.Equal(t, http.StatusOK, get.Code)
			assert.Equal(t, pngImage, get.Body.Bytes())
		})
	}
}

func TestUploadPoster(t *testing.T) {
	extracted := ocr.Result{
		Products: []ocr.ExtractedProduct{
			{Name: "Fresh Milk 1L", Price: 2.49, Description: ocr.DefaultDescription, Category: ocr.DefaultCategory, InStock: true},
		},
		StoreAddress: "1 Main St",
	}

	tcases := []struct {
		name     string
		as       *types.User
		field    string
		content  []byte
		ocrErr   error
		status   int
		products int
	}{
		{name: "owner uploads poster", as: &owner, field: "poster", content: pngImage, status: http.StatusOK, products: 1},
		{name: "no file", as: &owner, status: http.StatusBadRequest},
		{name: "not an image", as: &owner, field: "poster", content: []byte("plain text"), status: http.StatusBadRequest},
		{name: "stranger", as: &customer, field: "poster", content: pngImage, status: http.StatusForbidden},
		{
			name:    "ocr timeout",
			as:      &owner,
			field:   "poster",
			content: pngImage,
			ocrErr:  &ocr.Error{Kind: ocr.KindTimeout, Err: errors.New("deadline exceeded")},
			status:  http.StatusBadGateway,
		},
		{
			name:    "ocr script error",
			as:      &owner,
			field:   "poster",
			content: pngImage,
			ocrErr:  &ocr.Error{Kind: ocr.KindScript, Err: errors.New("no text found")},
			status:  http.StatusBadGateway,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			db.On("GetStore", "store-1").Return(testStore(), nil).Once()
			posters := &fakePosters{result: extracted, err: tc.ocrErr}
			app := newTestApp(t, db, posters)

			req := multipartRequest(t, app, "/api/stores/store-1/poster", tc.field, "poster.png", tc.content, tc.as)
			rr := serve(app, req)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status != http.StatusOK {
				return
			}

			resp := decodeBody[PosterResponse](t, rr)
			assert.Len(t, resp.Products, tc.products)
			assert.Equal(t, "1 Main St", resp.StoreInfo.Address)
			assert.True(t, strings.HasPrefix(resp.PosterURL, "/uploads/posters/store-1/"), "unexpected url %q", resp.PosterURL)

			assert.NotEmpty(t, posters.path, "expected ocr to run on the upload")
			_, err := os.Stat(posters.path)
			assert.True(t, os.IsNotExist(err), "expected temporary poster file to be removed")
		})
	}
}

func TestUploadPoster_EmptyResult(t *testing.T) {
	db := &database.MockRepository{}
	db.On("GetStore", "store-1").Return(testStore(), nil).Once()
	app := newTestApp(t, db, &fakePosters{})

	rr := serve(app, multipartRequest(t, app, "/api/stores/store-1/poster", "poster", "poster.png", pngImage, &owner))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"products":[]`)
}
