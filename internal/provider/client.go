package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"statdesk/internal/metrics"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements Client against the provider's REST API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option customizes an OpenAIClient.
type Option func(*OpenAIClient)

// WithBaseURL points the client at a different API root (used by tests).
func WithBaseURL(url string) Option {
	return func(c *OpenAIClient) { c.baseURL = url }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenAIClient) { c.client = hc }
}

func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenAIClient) ListDocuments(ctx context.Context, storeID string, limit int) ([]DocumentListing, error) {
	url := fmt.Sprintf("%s/vector_stores/%s/files?limit=%d", c.baseURL, storeID, limit)

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, url, nil, &parsed, "list_documents"); err != nil {
		return nil, fmt.Errorf("list documents in store %s: %w", storeID, err)
	}

	listings := make([]DocumentListing, 0, len(parsed.Data))
	for _, f := range parsed.Data {
		// The provider keys store entries by the file id itself.
		listings = append(listings, DocumentListing{ID: f.ID, FileID: f.ID})
	}
	return listings, nil
}

func (c *OpenAIClient) GetFileMetadata(ctx context.Context, fileID string) (FileMetadata, error) {
	url := fmt.Sprintf("%s/files/%s", c.baseURL, fileID)

	var parsed struct {
		Filename string `json:"filename"`
	}
	if err := c.call(ctx, http.MethodGet, url, nil, &parsed, "get_file_metadata"); err != nil {
		return FileMetadata{}, fmt.Errorf("get metadata for file %s: %w", fileID, err)
	}
	return FileMetadata{Filename: parsed.Filename}, nil
}

func (c *OpenAIClient) SetDocumentAttributes(ctx context.Context, storeID, listingID string, attrs Attributes) error {
	url := fmt.Sprintf("%s/vector_stores/%s/files/%s", c.baseURL, storeID, listingID)

	payload := map[string]any{"attributes": attrs}
	if err := c.call(ctx, http.MethodPost, url, payload, nil, "set_document_attributes"); err != nil {
		return fmt.Errorf("set attributes on %s in store %s: %w", listingID, storeID, err)
	}
	return nil
}

type completionWire struct {
	Model        string     `json:"model"`
	Instructions string     `json:"instructions,omitempty"`
	Input        []Turn     `json:"input"`
	Tools        []toolWire `json:"tools,omitempty"`
	Include      []string   `json:"include,omitempty"`
}

type toolWire struct {
	Type           string      `json:"type"`
	VectorStoreIDs []string    `json:"vector_store_ids"`
	MaxNumResults  int         `json:"max_num_results,omitempty"`
	Filters        *filterWire `json:"filters,omitempty"`
}

type filterWire struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (c *OpenAIClient) CreateGroundedCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	wire := completionWire{
		Model:        req.Model,
		Instructions: req.Instructions,
		Input:        req.Turns,
	}
	if req.Retrieval != nil {
		tool := toolWire{
			Type:           "file_search",
			VectorStoreIDs: []string{req.Retrieval.StoreID},
			MaxNumResults:  req.Retrieval.MaxResults,
		}
		if f := req.Retrieval.Filter; f != nil {
			tool.Filters = &filterWire{Type: "eq", Key: f.Key, Value: f.Value}
		}
		wire.Tools = []toolWire{tool}
		// Without this the response omits the retrieved evidence, and
		// the orchestrator cannot tell empty retrieval from a response
		// that simply left the results out.
		wire.Include = []string{"file_search_call.results"}
	}

	var parsed CompletionResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+"/responses", wire, &parsed, "completion"); err != nil {
		return nil, fmt.Errorf("grounded completion: %w", err)
	}
	return &parsed, nil
}

// call issues one authenticated request and decodes a JSON response
// into out when out is non-nil. Non-2xx statuses become *UpstreamError.
func (c *OpenAIClient) call(ctx context.Context, method, url string, payload, out any, operation string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("read provider response: %w", err)
	}

	metrics.ProviderCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ProviderCalls.WithLabelValues(operation, "error").Inc()
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	metrics.ProviderCalls.WithLabelValues(operation, "success").Inc()

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}
	return nil
}
