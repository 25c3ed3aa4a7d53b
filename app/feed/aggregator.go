package feed

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/lysyi3m/headlines/app/metrics"
	"golang.org/x/sync/errgroup"
)

type FetcherInterface interface {
	Run(ctx context.Context, src Source) FetchResult
}

var _ FetcherInterface = (*HTTPFetcher)(nil)

// Aggregator fetches every source concurrently and merges the results into
// one deduplicated list, newest first.
type Aggregator struct {
	fetcher  FetcherInterface
	filterer *Filterer
	now      func() time.Time
}

func NewAggregator(fetcher FetcherInterface) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		filterer: NewFilterer(),
		now:      time.Now,
	}
}

// Run never fails because of an upstream. Failed sources contribute no items;
// the only error is ErrNoSources. A limit of zero or less keeps every item.
func (a *Aggregator) Run(ctx context.Context, sources []Source, limit int) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	start := time.Now()
	perSource := make([][]Item, len(sources))

	var g errgroup.Group
	g.SetLimit(len(sources))
	for i, src := range sources {
		g.Go(func() error {
			perSource[i] = a.collect(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var merged []Item
	failed := 0
	for i := range perSource {
		if perSource[i] == nil {
			failed++
		}
		merged = append(merged, perSource[i]...)
	}

	items := Rank(Dedupe(merged))
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	metrics.ObserveAggregate(len(items))
	slog.Debug("Aggregation completed",
		"sources", len(sources),
		"failed", failed,
		"merged", len(merged),
		"items", len(items),
		"duration", time.Since(start))

	return &Result{
		Items:       items,
		Count:       len(items),
		GeneratedAt: a.now().UTC(),
	}, nil
}

// collect fetches and extracts a single source. It returns nil when the
// source failed and an empty slice when it succeeded without items.
func (a *Aggregator) collect(ctx context.Context, src Source) []Item {
	start := time.Now()
	res := a.fetcher.Run(ctx, src)
	metrics.ObserveFetch(src.Name, res.Outcome(), time.Since(start))

	if !res.OK() {
		slog.Warn("Source fetch failed", "source", src.Name, "kind", res.Err.Kind, "status", res.Err.Status, "error", res.Err)
		return nil
	}

	items, err := ExtractorFor(src).Extract(src, res.Body)
	if err != nil {
		slog.Warn("Source payload unreadable", "source", src.Name, "format", src.Format, "error", err)
		return nil
	}

	metrics.ObserveExtracted(string(src.Format), len(items))
	items = a.filterer.Run(items, src)
	slog.Debug("Source extracted", "source", src.Name, "items", len(items))

	if items == nil {
		items = []Item{}
	}
	return items
}

// Dedupe keeps the first item for each canonical key.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := CanonicalKey(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Rank sorts newest first in place. Items without a timestamp go last and
// ties keep their input order.
func Rank(items []Item) []Item {
	slices.SortStableFunc(items, func(a, b Item) int {
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return 0
		case a.PublishedAt == nil:
			return 1
		case b.PublishedAt == nil:
			return -1
		}
		return b.PublishedAt.Compare(*a.PublishedAt)
	})
	return items
}
