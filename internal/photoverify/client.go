// Package photoverify calls the external object-recognition service
// that confirms a photographed object matches a zone's target.
package photoverify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUnavailable is returned when the service is unreachable or
// responds with a server error. Callers must treat it as a failed
// verification, never a success.
var ErrUnavailable = errors.New("verification service unavailable")

// Result is the service verdict. Only Status == "same" counts as a
// successful verification.
type Result struct {
	Status           string  `json:"status"`
	Confidence       float64 `json:"confidence"`
	IdentifiedObject string  `json:"identified_object"`
}

func (r Result) Match() bool { return r.Status == "same" }

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether a service endpoint was set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// Verify uploads the image for the given zone and returns the verdict.
func (c *Client) Verify(ctx context.Context, zoneID int, teamID string, image io.Reader) (Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		return Result{}, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return Result{}, fmt.Errorf("building upload: %w", err)
	}
	if err := mw.WriteField("team_id", teamID); err != nil {
		return Result{}, fmt.Errorf("building upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Result{}, fmt.Errorf("building upload: %w", err)
	}

	url := fmt.Sprintf("%s/verify/zone_%d", c.baseURL, zoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Status: "different"}, nil
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return result, nil
}
