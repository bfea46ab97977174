package provider

import (
	"context"
	"strings"
)

// Roles accepted by the completion endpoint.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message of the dialogue sent to the provider.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DocumentListing is one entry of a store's file listing. The remote
// provider uses the underlying file id as the listing id, but the two
// are kept separate here because attribute writes are keyed by the
// listing and metadata lookups by the file.
type DocumentListing struct {
	ID     string
	FileID string
}

// FileMetadata is what a per-file lookup resolves; the listing itself
// does not carry the filename.
type FileMetadata struct {
	Filename string
}

// Attributes is the freshness payload written back onto a store entry.
type Attributes map[string]any

// EqFilter restricts retrieval to documents whose attribute Key equals Value.
type EqFilter struct {
	Key   string
	Value any
}

// RetrievalSpec scopes a completion request to one store.
type RetrievalSpec struct {
	StoreID    string
	MaxResults int
	Filter     *EqFilter
}

// CompletionRequest is a retrieval-augmented completion call: the
// dialogue turns, a free-text instruction block, and at most one
// retrieval tool spec.
type CompletionRequest struct {
	Model        string
	Instructions string
	Turns        []Turn
	Retrieval    *RetrievalSpec
}

// RetrievalResult is one piece of evidence the provider retrieved.
type RetrievalResult struct {
	FileID     string         `json:"file_id"`
	Filename   string         `json:"filename"`
	Score      float64        `json:"score"`
	Text       string         `json:"text"`
	Attributes map[string]any `json:"attributes"`
}

// OutputItem is one entry of the provider's structured output: either
// a retrieval call carrying its result list, or a message carrying
// text segments.
type OutputItem struct {
	Type    string            `json:"type"`
	Results []RetrievalResult `json:"results"`
	Content []ContentSegment  `json:"content"`
}

// ContentSegment is one piece of a message output item.
type ContentSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	outputTypeRetrieval = "file_search_call"
	outputTypeMessage   = "message"
	segmentTypeText     = "output_text"
)

// CompletionResponse is the provider's structured response.
type CompletionResponse struct {
	ID     string       `json:"id"`
	Output []OutputItem `json:"output"`
}

// RetrievalResults flattens the result lists of every retrieval call
// in the response, preserving order.
func (r *CompletionResponse) RetrievalResults() []RetrievalResult {
	var results []RetrievalResult
	for _, item := range r.Output {
		if item.Type == outputTypeRetrieval {
			results = append(results, item.Results...)
		}
	}
	return results
}

// Text concatenates every output-text segment of the response in
// order, joined by newlines and trimmed.
func (r *CompletionResponse) Text() string {
	var parts []string
	for _, item := range r.Output {
		if item.Type != outputTypeMessage {
			continue
		}
		for _, seg := range item.Content {
			if seg.Type == segmentTypeText && seg.Text != "" {
				parts = append(parts, seg.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Client is the boundary to the remote document store and completion
// provider. Implementations must return *UpstreamError for non-success
// provider responses.
type Client interface {
	// ListDocuments lists up to limit entries of a store. Entries
	// beyond the page are not reported.
	ListDocuments(ctx context.Context, storeID string, limit int) ([]DocumentListing, error)

	// GetFileMetadata resolves the filename behind a listed entry.
	GetFileMetadata(ctx context.Context, fileID string) (FileMetadata, error)

	// SetDocumentAttributes overwrites the attributes of one store entry.
	SetDocumentAttributes(ctx context.Context, storeID, listingID string, attrs Attributes) error

	// CreateGroundedCompletion issues a retrieval-augmented completion.
	CreateGroundedCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
