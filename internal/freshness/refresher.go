// Package freshness tags every document of a store with its reporting
// period and marks the most recent period as latest, so retrieval can
// be filtered to current data only.
package freshness

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"statdesk/internal/metrics"
	"statdesk/internal/period"
	"statdesk/internal/provider"

	"golang.org/x/sync/errgroup"
)

const (
	// ReasonNoPeriodFiles means no listed document carried a parseable
	// YYYY-MM period; the store is left untouched.
	ReasonNoPeriodFiles = "no_period_files"
	// ReasonRefreshFailed means a provider call failed mid-refresh.
	ReasonRefreshFailed = "refresh_failed"

	defaultPageLimit         = 100
	defaultLookupConcurrency = 8
)

// Result is the outcome of one refresh run for one store.
type Result struct {
	OK           bool
	LatestPeriod string
	Count        int
	Reason       string
	Err          error
}

// Refresher recomputes freshness attributes for stores.
type Refresher struct {
	client            provider.Client
	pageLimit         int
	lookupConcurrency int
}

func NewRefresher(client provider.Client) *Refresher {
	return &Refresher{
		client:            client,
		pageLimit:         defaultPageLimit,
		lookupConcurrency: defaultLookupConcurrency,
	}
}

type taggedDocument struct {
	listing   provider.DocumentListing
	filename  string
	period    string
	periodInt int
}

// Refresh lists the store, resolves filenames, ranks reporting periods
// and writes {period, period_int, is_latest, filename} back onto every
// parseable document. Writes are not transactional: a failure partway
// through leaves earlier writes in place and fails the whole store.
func (r *Refresher) Refresh(ctx context.Context, storeID string) Result {
	start := time.Now()
	result := r.refresh(ctx, storeID)
	metrics.RefreshDuration.WithLabelValues(storeID).Observe(time.Since(start).Seconds())

	if result.OK {
		metrics.RefreshRuns.WithLabelValues(storeID, "success").Inc()
		slog.Info("Freshness refresh succeeded",
			slog.String("store", storeID),
			slog.String("latest_period", result.LatestPeriod),
			slog.Int("documents", result.Count))
	} else {
		metrics.RefreshRuns.WithLabelValues(storeID, result.Reason).Inc()
		slog.Warn("Freshness refresh did not complete",
			slog.String("store", storeID),
			slog.String("reason", result.Reason),
			"error", result.Err)
	}
	return result
}

func (r *Refresher) refresh(ctx context.Context, storeID string) Result {
	listings, err := r.client.ListDocuments(ctx, storeID, r.pageLimit)
	if err != nil {
		return Result{Reason: ReasonRefreshFailed, Err: err}
	}

	docs, err := r.resolveDocuments(ctx, listings)
	if err != nil {
		return Result{Reason: ReasonRefreshFailed, Err: err}
	}

	if len(docs) == 0 {
		return Result{Reason: ReasonNoPeriodFiles}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].periodInt > docs[j].periodInt
	})
	// A reporting period can span several documents; every document
	// sharing the maximum period is latest.
	latest := docs[0].periodInt

	for _, doc := range docs {
		attrs := provider.Attributes{
			"period":     doc.period,
			"period_int": doc.periodInt,
			"is_latest":  doc.periodInt == latest,
			"filename":   doc.filename,
		}
		if err := r.client.SetDocumentAttributes(ctx, storeID, doc.listing.ID, attrs); err != nil {
			// Earlier writes of this run are not rolled back.
			return Result{Reason: ReasonRefreshFailed, Err: err}
		}
		metrics.DocumentsTagged.WithLabelValues(storeID).Inc()
	}

	return Result{OK: true, LatestPeriod: docs[0].period, Count: len(docs)}
}

// resolveDocuments looks up every listing's filename with bounded
// concurrency and keeps those with a parseable reporting period. Any
// single lookup failure fails the batch.
func (r *Refresher) resolveDocuments(ctx context.Context, listings []provider.DocumentListing) ([]taggedDocument, error) {
	resolved := make([]*taggedDocument, len(listings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.lookupConcurrency)
	for i, listing := range listings {
		i, listing := i, listing
		g.Go(func() error {
			meta, err := r.client.GetFileMetadata(ctx, listing.FileID)
			if err != nil {
				return err
			}

			p, ok := period.Extract(meta.Filename)
			if !ok {
				slog.Debug("Skipping document without reporting period",
					slog.String("file_id", listing.FileID),
					slog.String("filename", meta.Filename))
				return nil
			}
			key, ok := period.ToInt(p)
			if !ok {
				return nil
			}

			resolved[i] = &taggedDocument{
				listing:   listing,
				filename:  meta.Filename,
				period:    p,
				periodInt: key,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]taggedDocument, 0, len(resolved))
	for _, doc := range resolved {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}
