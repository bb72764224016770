package storage

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "herboscope/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func pngBytes(t *testing.T) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)
	return b
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload-image", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestImageStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plantImages")
	store, err := NewImageStore(dir, "plantImages/")
	require.NoError(t, err)
	assert.Equal(t, "/plantImages", store.Mount())

	content := pngBytes(t)
	rel, err := store.Save(fileHeader(t, "leaf.png", content))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "/plantImages/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(rel)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestImageStoreRejectsNonImage(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), "/plantImages")
	require.NoError(t, err)

	_, err = store.Save(fileHeader(t, "notes.png", []byte("just some text pretending to be a picture")))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageStoreRejectsSVG(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), "/plantImages")
	require.NoError(t, err)

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"><script>alert(document.cookie)</script></svg>`)
	_, err = store.Save(fileHeader(t, "leaf.svg", svg))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSniffAcceptsRasterTypes(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

	for name, content := range map[string][]byte{"png": pngBytes(t), "gif": gif, "jpeg": jpeg} {
		t.Run(name, func(t *testing.T) {
			img, err := Sniff(bytes.NewReader(content))
			require.NoError(t, err)
			assert.Equal(t, "image/"+name, img.MIME)
		})
	}
}

func TestSniffKeepsWholeBody(t *testing.T) {
	content := append(pngBytes(t), bytes.Repeat([]byte{0}, 5000)...)
	img, err := Sniff(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)

	all, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	assert.Equal(t, content, all)
}

func TestSniffEmpty(t *testing.T) {
	_, err := Sniff(bytes.NewReader(nil))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))
}
