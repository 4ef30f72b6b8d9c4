package pose

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a pose-inference sidecar over HTTP. The sidecar wraps the
// actual landmark model; this client only ships frames and decodes results.
type Client struct {
	serverURL  string
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		serverURL: config.ServerURL,
		config:    config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type inferRequest struct {
	Image                  string  `json:"image"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
}

type inferResponse struct {
	Detected  bool       `json:"detected"`
	Landmarks *Keypoints `json:"landmarks"`
	Error     string     `json:"error"`
}

// Estimate sends one JPEG frame for inference. A response with detected=false
// maps to (nil, nil): no pose in this frame, not a failure.
func (c *Client) Estimate(ctx context.Context, frameJPEG []byte) (*Keypoints, error) {
	reqBody := inferRequest{
		Image:                  base64.StdEncoding.EncodeToString(frameJPEG),
		MinDetectionConfidence: c.config.MinDetectionConfidence,
		MinTrackingConfidence:  c.config.MinTrackingConfidence,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.serverURL+"/v1/pose:estimate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose server returned status %d: %s", resp.StatusCode, string(body))
	}

	var result inferResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse inference response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("pose server error: %s", result.Error)
	}

	if !result.Detected || result.Landmarks == nil {
		return nil, nil
	}

	return result.Landmarks, nil
}
