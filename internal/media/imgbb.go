// Package media uploads inline images to the ImgBB hosting service.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// Uploader hands inline base64 image data to an external host and returns
// the hosted URL.
type Uploader interface {
	Upload(ctx context.Context, base64Image string) (string, error)
}

// UploadError carries the upstream failure detail so handlers can surface
// it to the client.
type UploadError struct {
	Detail string
}

func (e *UploadError) Error() string {
	return "image upload failed: " + e.Detail
}

type ImgBB struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewImgBB(apiKey string, timeout time.Duration) *ImgBB {
	return &ImgBB{
		apiKey:     apiKey,
		baseURL:    "https://api.imgbb.com/1/upload",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewImgBBWithURL exists for tests pointing at a fake host.
func NewImgBBWithURL(apiKey, baseURL string, timeout time.Duration) *ImgBB {
	u := NewImgBB(apiKey, timeout)
	u.baseURL = baseURL
	return u
}

// Upload posts the image as a multipart form field and returns data.url from
// the response. Transport errors and 5xx responses are retried once; the
// call has no local side effect, so a duplicate upload is harmless.
func (u *ImgBB) Upload(ctx context.Context, base64Image string) (string, error) {
	hostedURL, err := u.attempt(ctx, base64Image)
	if err == nil {
		return hostedURL, nil
	}
	if _, fatal := err.(*UploadError); fatal {
		return "", err
	}
	return u.attempt(ctx, base64Image)
}

// attempt returns *UploadError for definitive upstream rejections and a
// plain error for retryable transport/server failures.
func (u *ImgBB) attempt(ctx context.Context, base64Image string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("image", base64Image); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	endpoint := u.baseURL + "?key=" + url.QueryEscape(u.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("imgbb returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UploadError{Detail: fmt.Sprintf("imgbb returned %d: %s", resp.StatusCode, string(respBody))}
	}

	var result struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.Data.URL == "" {
		return "", &UploadError{Detail: "imgbb response missing hosted url"}
	}
	return result.Data.URL, nil
}
