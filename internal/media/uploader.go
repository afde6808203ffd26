// Package media pushes cover images to the external image host. The host
// serves the stored copies; this service only proxies the upload and hands
// the resulting URL back to the admin flow.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// DefaultBaseURL is the image host's unsigned upload endpoint root.
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// Uploader sends unsigned uploads to one cloud's preset.
type Uploader struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	preset     string
}

// NewUploader creates an uploader for a cloud name and upload preset.
func NewUploader(httpClient *http.Client, baseURL, cloudName, preset string) *Uploader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Uploader{
		httpClient: httpClient,
		baseURL:    baseURL,
		cloudName:  cloudName,
		preset:     preset,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends one image and returns the hosted HTTPS URL.
func (u *Uploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	body, contentType, err := encodeForm(u.preset, filename, file)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decoded.Error.Message != "" {
			return "", fmt.Errorf("upload %s: %s", filename, decoded.Error.Message)
		}
		return "", fmt.Errorf("upload %s: unexpected status %d", filename, resp.StatusCode)
	}
	if decoded.SecureURL == "" {
		return "", fmt.Errorf("upload %s: response carried no secure_url", filename)
	}
	return decoded.SecureURL, nil
}

func encodeForm(preset, filename string, file io.Reader) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("upload_preset", preset); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	return pr, writer.FormDataContentType(), nil
}
