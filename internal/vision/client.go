package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const defaultServiceURL = "http://localhost:8000"

// ServiceClient talks to the local vision service (an InsightFace-style HTTP
// wrapper) for both face detection and face embedding.
type ServiceClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewServiceClient creates a client for the vision service.
func NewServiceClient(baseURL, model string) *ServiceClient {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &ServiceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

// Model returns the model name being used.
func (c *ServiceClient) Model() string {
	return c.model
}

// detectResponse is the response from the detection endpoint.
type detectResponse struct {
	FacesCount int `json:"facesCount"`
	Faces      []struct {
		BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2]
		DetScore float64   `json:"detScore"`
	} `json:"faces"`
}

// embedResponse is the response from the face embedding endpoint.
type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// postImage encodes the image as JPEG, wraps it in a multipart form and
// posts it to the given endpoint.
func (c *ServiceClient) postImage(ctx context.Context, endpoint string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if err := jpeg.Encode(part, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Detect finds faces in the image via the /detect endpoint.
func (c *ServiceClient) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	body, err := c.postImage(ctx, "/detect", img)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}

	detections := make([]Detection, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.BBox) != 4 {
			continue
		}
		detections = append(detections, Detection{
			Box:   image.Rect(int(f.BBox[0]), int(f.BBox[1]), int(f.BBox[2]), int(f.BBox[3])),
			Score: f.DetScore,
		})
	}
	return detections, nil
}

// Embed computes the embedding for a cropped face via the /embed/face
// endpoint.
func (c *ServiceClient) Embed(ctx context.Context, face image.Image) ([]float32, error) {
	body, err := c.postImage(ctx, "/embed/face", face)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return resp.Embedding, nil
}
