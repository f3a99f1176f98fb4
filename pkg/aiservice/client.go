package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the clinical AI microservice that performs text
// extraction, PII analysis and SOAP generation. All endpoints reply with an
// envelope carrying Success/Message, so a 200 can still be a refusal.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type ExtractRequest struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Content  []byte `json:"content"` // base64-encoded by encoding/json
}

type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Text    string `json:"text"`
}

type PiiRequest struct {
	Text string `json:"text"`
}

type PiiResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	MaskedText    string `json:"masked_text"`
	EntitiesFound int    `json:"entities_found"`
}

type SoapRequest struct {
	Text        string `json:"text"`
	PatientName string `json:"patient_name,omitempty"`
}

type SoapSectionPayload struct {
	Content    string   `json:"content"`
	Confidence *float64 `json:"confidence,omitempty"`
	WordCount  *int     `json:"word_count,omitempty"`
}

type SoapResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	Subjective SoapSectionPayload `json:"subjective"`
	Objective  SoapSectionPayload `json:"objective"`
	Assessment SoapSectionPayload `json:"assessment"`
	Plan       SoapSectionPayload `json:"plan"`

	AiApproved         bool   `json:"ai_approved"`
	ValidationFeedback string `json:"validation_feedback"`
	EntityCount        *int   `json:"entity_count,omitempty"`
	ProcessingTimeMs   *int   `json:"processing_time_ms,omitempty"`
}

// ExtractText pulls plain text out of an uploaded document.
func (c *Client) ExtractText(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	var resp ExtractResponse
	if err := c.post(ctx, "/api/v1/extract", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnalyzePii masks personally identifying information in extracted text.
func (c *Client) AnalyzePii(ctx context.Context, req PiiRequest) (*PiiResponse, error) {
	var resp PiiResponse
	if err := c.post(ctx, "/api/v1/pii", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateSoap produces a structured SOAP note from extracted text.
func (c *Client) GenerateSoap(ctx context.Context, req SoapRequest) (*SoapResponse, error) {
	var resp SoapResponse
	if err := c.post(ctx, "/api/v1/soap", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai service %s: status %d: %s", path, httpResp.StatusCode, string(respBytes))
	}
	return json.Unmarshal(respBytes, out)
}
