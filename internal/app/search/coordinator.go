package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/cache"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/gateway"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/metrics"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
)

const (
	// DefaultLimit is how many hits each sink returns when the caller does
	// not ask for a specific count.
	DefaultLimit = 10

	sinkQueryTimeout = 15 * time.Second
)

// Coordinator runs one text query against every configured vector sink in
// parallel and reports each sink's hits, latency, and error independently.
// One sink failing never hides the other's results.
type Coordinator struct {
	embedder gateway.TextEmbedder
	sinks    []vector.Sink
	cache    cache.EmbeddingCache
	log      *zap.SugaredLogger
}

func NewCoordinator(embedder gateway.TextEmbedder, sinks []vector.Sink, c cache.EmbeddingCache, log *zap.SugaredLogger) *Coordinator {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &Coordinator{embedder: embedder, sinks: sinks, cache: c, log: log}
}

// Search embeds the query text once and fans it out to all sinks. The
// filter narrows results (e.g. videoId); limit <= 0 means DefaultLimit.
func (c *Coordinator) Search(ctx context.Context, query string, limit int, filter map[string]string) (model.SearchComparison, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchComparison{}, errors.RequiredField("q")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	vec, err := c.queryVector(ctx, query)
	if err != nil {
		return model.SearchComparison{}, errors.Wrap(err, "embedding search query")
	}

	metrics.Search()

	results := make(map[string]model.SinkSearchResult, len(c.sinks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, sink := range c.sinks {
		wg.Add(1)
		go func(s vector.Sink) {
			defer wg.Done()
			res := c.querySink(ctx, s, vec, limit, filter)
			mu.Lock()
			results[s.Name()] = res
			mu.Unlock()
		}(sink)
	}
	wg.Wait()

	return model.SearchComparison{Query: query, Results: results}, nil
}

func (c *Coordinator) queryVector(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := c.cache.GetVector(ctx, query); ok {
		return vec, nil
	}
	vec, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.PutVector(ctx, query, vec)
	return vec, nil
}

func (c *Coordinator) querySink(ctx context.Context, s vector.Sink, vec []float32, limit int, filter map[string]string) model.SinkSearchResult {
	queryCtx, cancel := context.WithTimeout(ctx, sinkQueryTimeout)
	defer cancel()

	started := time.Now()
	hits, err := s.Query(queryCtx, vec, limit, filter)
	elapsed := time.Since(started)
	metrics.SinkQuery(s.Name(), elapsed, err)

	res := model.SinkSearchResult{
		SinkName:      s.Name(),
		Hits:          []model.SearchHit{},
		ElapsedMillis: elapsed.Milliseconds(),
	}
	if err != nil {
		c.log.Warnw("sink query failed", "sink", s.Name(), "elapsedMs", res.ElapsedMillis, "error", err)
		res.Error = err.Error()
		return res
	}
	res.Hits = dedupe(hits, s.ScoreDirection(), limit)
	return res
}

// dedupe collapses hits that cover the same clip of the same video, keeping
// whichever score the direction says is closer. Different embedding kinds of
// one clip count as the same clip.
func dedupe(hits []model.SearchHit, dir model.ScoreDirection, limit int) []model.SearchHit {
	best := make(map[string]model.SearchHit, len(hits))
	order := make([]string, 0, len(hits))
	for _, h := range hits {
		key := fmt.Sprintf("%s|%g|%g", h.VideoID, h.StartSec, h.EndSec)
		prev, seen := best[key]
		if !seen {
			best[key] = h
			order = append(order, key)
			continue
		}
		if dir.Better(h.Score, prev.Score) {
			best[key] = h
		}
	}

	out := make([]model.SearchHit, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dir.Better(out[i].Score, out[j].Score)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
