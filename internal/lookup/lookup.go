// Package lookup proxies plant identification and image search to third
// party APIs. Each upstream sits behind a narrow interface so handlers do not
// depend on the HTTP client used to reach it.
package lookup

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "herboscope/pkg/errors"
)

// Organ hints accepted by the identification API.
const (
	OrganAuto   = "auto"
	OrganLeaf   = "leaf"
	OrganFlower = "flower"
	OrganFruit  = "fruit"
)

// Image is an uploaded photo forwarded to an upstream API.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageHit is one image search result.
type ImageHit struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	MIME   string `json:"mime"`
}

// Identifier identifies a plant species from a photo. The upstream JSON is
// returned untouched.
type Identifier interface {
	Identify(ctx context.Context, img Image, organ string) (json.RawMessage, error)
}

// ImageSearcher finds images matching a text query.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string) ([]ImageHit, error)
}

// ParseOrgan validates an organ hint; an empty hint means OrganAuto.
func ParseOrgan(s string) (string, error) {
	switch o := strings.ToLower(strings.TrimSpace(s)); o {
	case "":
		return OrganAuto, nil
	case OrganAuto, OrganLeaf, OrganFlower, OrganFruit:
		return o, nil
	default:
		return "", apperrors.Newf(apperrors.CodeInvalid, "organ must be one of leaf, flower, fruit, auto (got %q)", s)
	}
}
