package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "herboscope/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// rasterTypes are the accepted upload formats. Scriptable formats such as
// SVG are never stored.
var rasterTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore keeps uploaded plant images in a directory that the HTTP
// server exposes under a static mount.
type ImageStore struct {
	dir   string
	mount string
}

// NewImageStore creates dir if needed.
func NewImageStore(dir, mount string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &ImageStore{dir: dir, mount: "/" + strings.Trim(mount, "/")}, nil
}

// Dir is the directory holding stored images.
func (s *ImageStore) Dir() string { return s.dir }

// Mount is the URL path prefix the images are served under.
func (s *ImageStore) Mount() string { return s.mount }

// Save stores the uploaded file under a fresh name and returns its
// server-relative path ("/plantImages/<uuid>.<ext>"). Files whose content is
// not an image are rejected with CodeInvalid.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInvalid, "could not read uploaded file")
	}
	defer src.Close()

	img, err := Sniff(src)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + img.Ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to store image")
	}
	if _, err := io.Copy(dst, img.Body); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to store image")
	}
	if err := dst.Close(); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to store image")
	}
	return path.Join(s.mount, name), nil
}

// Image is an upload whose content has been identified as an image.
type Image struct {
	MIME string
	Ext  string
	// Body yields the full content, including the sniffed prefix.
	Body io.Reader
}

// Sniff detects the content type of r from its first bytes. Only raster
// images (JPEG, PNG, GIF, WebP) are accepted.
func Sniff(r io.Reader) (*Image, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalid, "could not read uploaded file")
	}
	head = head[:n]
	if n == 0 {
		return nil, apperrors.New(apperrors.CodeInvalid, "uploaded file is empty")
	}

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), rasterTypes...) {
		return nil, apperrors.Newf(apperrors.CodeInvalid, "uploaded file is not an image (%s)", mt.String())
	}
	return &Image{
		MIME: mt.String(),
		Ext:  mt.Extension(),
		Body: io.MultiReader(bytes.NewReader(head), r),
	}, nil
}
