package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	apperrors "herboscope/pkg/errors"
)

// PlantNetClient calls the Pl@ntNet identification API.
type PlantNetClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPlantNetClient creates a client for baseURL (e.g.
// "https://my-api.plantnet.org"). A nil client means http.DefaultClient.
func NewPlantNetClient(baseURL, apiKey string, client *http.Client) *PlantNetClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &PlantNetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Identify posts img and organ as multipart form data to /v2/identify/all.
func (c *PlantNetClient) Identify(ctx context.Context, img Image, organ string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, apperrors.New(apperrors.CodeUpstream, "plant identification is not configured")
	}

	body, contentType, err := identifyForm(img, organ)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build identification request")
	}

	endpoint := c.baseURL + "/v2/identify/all?api-key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build identification request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(redactKey(err, c.apiKey), apperrors.CodeUpstream, "plant identification request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Newf(apperrors.CodeUpstream, "PlantNet API error: %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "failed to read identification response")
	}
	if !json.Valid(raw) {
		return nil, apperrors.New(apperrors.CodeUpstream, "PlantNet API returned invalid JSON")
	}
	return json.RawMessage(raw), nil
}

func identifyForm(img Image, organ string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	filename := img.Filename
	if filename == "" {
		filename = "plant"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("organs", organ); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// redactKey keeps the API key out of transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED"))
}
