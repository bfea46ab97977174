package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client for tests. Zero values behave as
// an empty, always-succeeding provider.
type MockClient struct {
	mu sync.Mutex

	Listings  map[string][]DocumentListing
	Filenames map[string]string
	Response  *CompletionResponse

	ListErr       error
	MetadataErr   map[string]error
	AttributesErr map[string]error
	CompletionErr error

	Written     map[string]Attributes
	WriteOrder  []string
	LastRequest *CompletionRequest
	Completions int
}

func NewMockClient() *MockClient {
	return &MockClient{
		Listings:      make(map[string][]DocumentListing),
		Filenames:     make(map[string]string),
		MetadataErr:   make(map[string]error),
		AttributesErr: make(map[string]error),
		Written:       make(map[string]Attributes),
	}
}

// AddDocument registers one store entry and its resolvable filename.
func (m *MockClient) AddDocument(storeID, fileID, filename string) {
	m.Listings[storeID] = append(m.Listings[storeID], DocumentListing{ID: fileID, FileID: fileID})
	m.Filenames[fileID] = filename
}

func (m *MockClient) ListDocuments(ctx context.Context, storeID string, limit int) ([]DocumentListing, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	listings := m.Listings[storeID]
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func (m *MockClient) GetFileMetadata(ctx context.Context, fileID string) (FileMetadata, error) {
	if err := m.MetadataErr[fileID]; err != nil {
		return FileMetadata{}, err
	}
	name, ok := m.Filenames[fileID]
	if !ok {
		return FileMetadata{}, fmt.Errorf("unknown file %s", fileID)
	}
	return FileMetadata{Filename: name}, nil
}

func (m *MockClient) SetDocumentAttributes(ctx context.Context, storeID, listingID string, attrs Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.AttributesErr[listingID]; err != nil {
		return err
	}
	m.Written[listingID] = attrs
	m.WriteOrder = append(m.WriteOrder, listingID)
	return nil
}

func (m *MockClient) CreateGroundedCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Completions++
	m.LastRequest = &req
	if m.CompletionErr != nil {
		return nil, m.CompletionErr
	}
	if m.Response != nil {
		return m.Response, nil
	}
	return &CompletionResponse{}, nil
}
