package freshness

import (
	"context"
	"errors"
	"testing"

	"statdesk/internal/provider"
)

func TestRefresh_TagsOnlyMaxPeriodLatest(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_price", "file-1", "cpi_2025-11.pdf")
	mock.AddDocument("vs_price", "file-2", "cpi_2025-12.pdf")
	mock.AddDocument("vs_price", "file-3", "cpi_annex_2025-12.pdf")
	mock.AddDocument("vs_price", "file-4", "cpi_2026-01.pdf")

	result := NewRefresher(mock).Refresh(context.Background(), "vs_price")

	if !result.OK {
		t.Fatalf("expected success, got reason=%q err=%v", result.Reason, result.Err)
	}
	if result.LatestPeriod != "2026-01" {
		t.Errorf("LatestPeriod = %q, want %q", result.LatestPeriod, "2026-01")
	}
	if result.Count != 4 {
		t.Errorf("Count = %d, want 4", result.Count)
	}

	wantLatest := map[string]bool{
		"file-1": false,
		"file-2": false,
		"file-3": false,
		"file-4": true,
	}
	for id, want := range wantLatest {
		attrs, ok := mock.Written[id]
		if !ok {
			t.Fatalf("no attributes written for %s", id)
		}
		if got := attrs["is_latest"].(bool); got != want {
			t.Errorf("%s is_latest = %v, want %v", id, got, want)
		}
	}

	if got := mock.Written["file-4"]["period"]; got != "2026-01" {
		t.Errorf("file-4 period = %v, want 2026-01", got)
	}
	if got := mock.Written["file-4"]["period_int"]; got != 202601 {
		t.Errorf("file-4 period_int = %v, want 202601", got)
	}
	if got := mock.Written["file-4"]["filename"]; got != "cpi_2026-01.pdf" {
		t.Errorf("file-4 filename = %v, want cpi_2026-01.pdf", got)
	}
}

func TestRefresh_TieAtMaxMarksAllLatest(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_price", "file-1", "cpi_2025-12.pdf")
	mock.AddDocument("vs_price", "file-2", "cpi_regional_2025-12.pdf")

	result := NewRefresher(mock).Refresh(context.Background(), "vs_price")

	if !result.OK {
		t.Fatalf("expected success, got reason=%q err=%v", result.Reason, result.Err)
	}
	for _, id := range []string{"file-1", "file-2"} {
		if got := mock.Written[id]["is_latest"].(bool); !got {
			t.Errorf("%s is_latest = false, want true", id)
		}
	}
}

func TestRefresh_SkipsUnparseableFilenames(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_act", "file-1", "iip_2025-12.pdf")
	mock.AddDocument("vs_act", "file-2", "methodology.pdf")

	result := NewRefresher(mock).Refresh(context.Background(), "vs_act")

	if !result.OK {
		t.Fatalf("expected success, got reason=%q err=%v", result.Reason, result.Err)
	}
	if result.Count != 1 {
		t.Errorf("Count = %d, want 1", result.Count)
	}
	if _, written := mock.Written["file-2"]; written {
		t.Error("attributes written for document without a period")
	}
}

func TestRefresh_NoParseableDocumentsIsSoftFailure(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_act", "file-1", "notes.pdf")
	mock.AddDocument("vs_act", "file-2", "glossary.pdf")

	result := NewRefresher(mock).Refresh(context.Background(), "vs_act")

	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Reason != ReasonNoPeriodFiles {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonNoPeriodFiles)
	}
	if len(mock.Written) != 0 {
		t.Errorf("expected zero attribute writes, got %d", len(mock.Written))
	}
}

func TestRefresh_EmptyStoreIsSoftFailure(t *testing.T) {
	mock := provider.NewMockClient()

	result := NewRefresher(mock).Refresh(context.Background(), "vs_empty")

	if result.OK || result.Reason != ReasonNoPeriodFiles {
		t.Errorf("got ok=%v reason=%q, want soft %q failure", result.OK, result.Reason, ReasonNoPeriodFiles)
	}
}

func TestRefresh_ListFailureFailsStore(t *testing.T) {
	mock := provider.NewMockClient()
	mock.ListErr = &provider.UpstreamError{StatusCode: 500, Body: "boom"}

	result := NewRefresher(mock).Refresh(context.Background(), "vs_price")

	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Reason != ReasonRefreshFailed {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonRefreshFailed)
	}
	var upstream *provider.UpstreamError
	if !errors.As(result.Err, &upstream) {
		t.Errorf("Err = %v, want an UpstreamError", result.Err)
	}
}

func TestRefresh_LookupFailureFailsStore(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_price", "file-1", "cpi_2025-12.pdf")
	mock.AddDocument("vs_price", "file-2", "cpi_2026-01.pdf")
	mock.MetadataErr["file-2"] = errors.New("lookup failed")

	result := NewRefresher(mock).Refresh(context.Background(), "vs_price")

	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Reason != ReasonRefreshFailed {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonRefreshFailed)
	}
	if len(mock.Written) != 0 {
		t.Errorf("expected zero attribute writes, got %d", len(mock.Written))
	}
}

func TestRefresh_WriteFailureFailsStoreButKeepsEarlierWrites(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_price", "file-1", "cpi_2026-01.pdf")
	mock.AddDocument("vs_price", "file-2", "cpi_2025-12.pdf")
	mock.AttributesErr["file-2"] = errors.New("write failed")

	result := NewRefresher(mock).Refresh(context.Background(), "vs_price")

	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Reason != ReasonRefreshFailed {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonRefreshFailed)
	}
	// Writes are sequential in descending period order and are not
	// rolled back on failure.
	if _, ok := mock.Written["file-1"]; !ok {
		t.Error("expected the earlier write to remain")
	}
	if _, ok := mock.Written["file-2"]; ok {
		t.Error("failed write should not be recorded")
	}
}

func TestRefresh_RespectsPageLimit(t *testing.T) {
	mock := provider.NewMockClient()
	mock.AddDocument("vs_price", "file-1", "cpi_2025-11.pdf")
	mock.AddDocument("vs_price", "file-2", "cpi_2025-12.pdf")
	mock.AddDocument("vs_price", "file-3", "cpi_2026-01.pdf")

	r := NewRefresher(mock)
	r.pageLimit = 2
	result := r.Refresh(context.Background(), "vs_price")

	if !result.OK {
		t.Fatalf("expected success, got reason=%q err=%v", result.Reason, result.Err)
	}
	// Documents beyond the listing page are not considered, even if
	// one of them would have been the true latest.
	if result.Count != 2 {
		t.Errorf("Count = %d, want 2", result.Count)
	}
	if result.LatestPeriod != "2025-12" {
		t.Errorf("LatestPeriod = %q, want %q", result.LatestPeriod, "2025-12")
	}
}
