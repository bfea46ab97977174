package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"statdesk/internal/metrics"
	"statdesk/internal/provider"
)

const defaultModel = "gpt-4o-mini"

// notConfirmedSentence is the exact sentence the model is instructed
// to answer with when the retrieved evidence does not confirm the
// requested information.
const notConfirmedSentence = "The requested information is not confirmed in the registered materials."

// groundingRules is appended verbatim to every store's system prompt.
const groundingRules = `

Grounding rules:
- Answer only from the retrieved evidence. Never use outside knowledge or speculate.
- If no evidence is found, answer exactly: "` + notConfirmedSentence + `"
- When available, state the reporting period and the key figures.`

// latestOnlyRule is added when freshness filtering is trusted for the store.
const latestOnlyRule = `
- Base your answer only on evidence tagged is_latest = true.`

// StoreConfig is the immutable per-store configuration assembled once
// at startup. EnforceLatest carries the readiness outcome of the
// startup freshness refresh: when false, queries search the store
// unfiltered instead of trusting possibly stale tags.
type StoreConfig struct {
	ID            string
	Domain        string
	SystemPrompt  string
	MaxResults    int
	EnforceLatest bool
}

// RefusalText is the fixed answer returned when retrieval against a
// store produced zero results.
func RefusalText(domain string) string {
	return fmt.Sprintf("%s: no matching registered material found for this question.", domain)
}

// Grounded answers questions strictly from a store's registered
// documents. It, not the model, decides whether evidence existed.
type Grounded struct {
	client provider.Client
	model  string
}

func NewGrounded(client provider.Client) *Grounded {
	return &Grounded{client: client, model: defaultModel}
}

// Answer issues one retrieval-augmented completion for the given
// turns against the configured store. When the store's retrieval
// returns no results, the fixed domain-labeled refusal is returned
// regardless of any text the provider synthesized.
func (g *Grounded) Answer(ctx context.Context, turns []provider.Turn, store StoreConfig) (string, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues(store.ID).Observe(time.Since(start).Seconds())
	}()

	instructions := store.SystemPrompt + groundingRules
	if store.EnforceLatest {
		instructions += latestOnlyRule
	}

	req := provider.CompletionRequest{
		Model:        g.model,
		Instructions: instructions,
		Turns:        turns,
	}
	if store.ID != "" {
		spec := &provider.RetrievalSpec{
			StoreID:    store.ID,
			MaxResults: store.MaxResults,
		}
		if store.EnforceLatest {
			spec.Filter = &provider.EqFilter{Key: "is_latest", Value: true}
		}
		req.Retrieval = spec
	}

	resp, err := g.client.CreateGroundedCompletion(ctx, req)
	if err != nil {
		metrics.QueriesProcessed.WithLabelValues(store.ID, "error").Inc()
		return "", fmt.Errorf("answer for %s: %w", store.Domain, err)
	}

	if store.ID != "" && len(resp.RetrievalResults()) == 0 {
		metrics.QueriesProcessed.WithLabelValues(store.ID, "refused").Inc()
		metrics.GroundingRefusals.WithLabelValues(store.ID).Inc()
		slog.Info("No retrieval evidence, returning fixed refusal",
			slog.String("store", store.ID),
			slog.String("domain", store.Domain))
		return RefusalText(store.Domain), nil
	}

	metrics.QueriesProcessed.WithLabelValues(store.ID, "success").Inc()
	return resp.Text(), nil
}
