package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"serp-radar/cache"
	"serp-radar/config"
	"serp-radar/database/groups"
	"serp-radar/database/keywords"
	"serp-radar/database/metrics"
	models "serp-radar/database/models_pkg"
	"serp-radar/database/snapshots"
	"serp-radar/helpers"
	"serp-radar/realtime"
	ws "serp-radar/websocket"
)

// SnapshotCacheKey is the Redis key of the latest ranking snapshot
const SnapshotCacheKey = "rankings:latest"

const (
	trailingImpressionDays = 7
	dailyTotalWindowDays   = 90
	snapshotRetentionDays  = 30
)

// Snapshot is the full output of one scoring cycle: the two ranked
// lists, the city and page rollups and the normalized page priorities.
// It is what the read API serves and what gets broadcast on refresh.
type Snapshot struct {
	ComputedAt     time.Time          `json:"computed_at"`
	Rankings       RankingResult      `json:"rankings"`
	Cities         []GroupRollup      `json:"cities"`
	Pages          []GroupRollup      `json:"pages"`
	PagePriorities map[string]float64 `json:"page_priorities"`
}

// RankingRefresher periodically recomputes the full scoring pipeline
// from the samples and publishes the resulting snapshot: Redis for the
// read API, Postgres for history, SSE/WebSocket for live dashboards.
type RankingRefresher struct {
	keywordRepo *keywords.Repository
	metricsRepo *metrics.Repository
	groupRepo   *groups.Repository
	snapRepo    *snapshots.Repository
	redis       *cache.RedisClient
	broker      *realtime.Broker
	hub         *ws.Hub

	trend      *TrendCalculator
	engine     *RankingEngine
	aggregator *GeoPageAggregator
	priority   *PriorityScorer

	// Pattern caches are owned here and reset on every cycle, when the
	// group catalog is reloaded.
	cityPatterns *PatternCache
	pagePatterns *PatternCache

	cfg  *config.Config
	done chan bool
}

// NewRankingRefresher creates a new ranking refresher
func NewRankingRefresher(
	keywordRepo *keywords.Repository,
	metricsRepo *metrics.Repository,
	groupRepo *groups.Repository,
	snapRepo *snapshots.Repository,
	redis *cache.RedisClient,
	broker *realtime.Broker,
	hub *ws.Hub,
	cfg *config.Config,
) *RankingRefresher {
	bench := NewCtrBenchmark()
	scorer := NewKeywordScorer(bench, cfg.Scoring)

	return &RankingRefresher{
		keywordRepo:  keywordRepo,
		metricsRepo:  metricsRepo,
		groupRepo:    groupRepo,
		snapRepo:     snapRepo,
		redis:        redis,
		broker:       broker,
		hub:          hub,
		trend:        NewTrendCalculator(),
		engine:       NewRankingEngine(scorer, cfg.Scoring),
		aggregator:   NewGeoPageAggregator(cfg.Scoring),
		priority:     NewPriorityScorer(bench),
		cityPatterns: NewPatternCache(),
		pagePatterns: NewPatternCache(),
		cfg:          cfg,
		done:         make(chan bool),
	}
}

// Start begins the refresh loop
func (rr *RankingRefresher) Start() {
	log.Println("📊 Ranking Refresher started")

	ticker := time.NewTicker(time.Duration(rr.cfg.Scoring.RefreshIntervalMinutes) * time.Minute)
	defer ticker.Stop()

	// Initial run
	rr.refresh()

	for {
		select {
		case <-ticker.C:
			rr.refresh()
		case <-rr.done:
			log.Println("📊 Ranking Refresher stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (rr *RankingRefresher) Stop() {
	rr.done <- true
}

// refresh runs one full scoring cycle and publishes the snapshot
func (rr *RankingRefresher) refresh() {
	log.Println("📊 Recomputing keyword rankings...")
	started := time.Now()

	if err := rr.metricsRepo.RefreshDailyTotals(dailyTotalWindowDays); err != nil {
		log.Printf("⚠️  Failed to refresh daily totals: %v", err)
		// Daily totals feed dataset health views only; the ranking pass
		// itself can still proceed.
	}

	snapshot, err := rr.ComputeSnapshot(time.Now())
	if err != nil {
		log.Printf("⚠️  Ranking refresh failed: %v", err)
		return
	}

	rr.publish(snapshot)

	log.Printf("✅ Ranking refresh complete in %v: %d top, %d improve, %d cities, %d pages",
		time.Since(started).Round(time.Millisecond),
		len(snapshot.Rankings.Top), len(snapshot.Rankings.Improve),
		len(snapshot.Cities), len(snapshot.Pages))
}

// ComputeSnapshot runs the full pipeline once: trends, ranking,
// aggregation and page priorities. Pure computation over the loaded
// inputs; no state survives between calls.
func (rr *RankingRefresher) ComputeSnapshot(now time.Time) (*Snapshot, error) {
	kwData, err := rr.loadKeywords()
	if err != nil {
		return nil, err
	}

	monthly, err := rr.monthlyTrends(now)
	if err != nil {
		return nil, err
	}

	momentum, err := rr.momentumTrends()
	if err != nil {
		return nil, err
	}

	trailing, err := rr.metricsRepo.TrailingImpressions(trailingImpressionDays)
	if err != nil {
		return nil, fmt.Errorf("load trailing impressions: %w", err)
	}

	rankings := rr.engine.Rank(RankingInput{
		Keywords:            kwData,
		Monthly:             monthly,
		Momentum:            momentum,
		TrailingImpressions: trailing,
	})

	cities, pages, err := rr.aggregateGroups(kwData, rankings.Improve, now)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ComputedAt:     now,
		Rankings:       rankings,
		Cities:         cities,
		Pages:          pages,
		PagePriorities: rr.pagePriorities(kwData, monthly),
	}, nil
}

// loadKeywords flattens active keywords and their latest samples into
// scoring inputs. Keywords without samples are excluded from scoring
// here; degenerate samples abort the cycle.
func (rr *RankingRefresher) loadKeywords() ([]KeywordData, error) {
	kws, err := rr.keywordRepo.GetActiveKeywords()
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	ids := make([]int64, len(kws))
	for i, kw := range kws {
		ids[i] = kw.ID
	}

	latest, err := rr.keywordRepo.GetLatestSamples(ids)
	if err != nil {
		return nil, fmt.Errorf("load latest samples: %w", err)
	}

	data := make([]KeywordData, 0, len(kws))
	for _, kw := range kws {
		sample, ok := latest[kw.ID]
		if !ok {
			continue
		}

		if err := ValidateMetrics(sample.Position, sample.Clicks, sample.Impressions); err != nil {
			return nil, fmt.Errorf("keyword %d: %w", kw.ID, err)
		}

		kd := KeywordData{
			ID:          kw.ID,
			Text:        kw.Text,
			Relevance:   kw.RelevanceScore,
			Position:    sample.Position,
			Clicks:      sample.Clicks,
			Impressions: sample.Impressions,
		}
		if kw.TargetURL != nil {
			kd.TargetURL = *kw.TargetURL
		}
		if kw.MatchText != nil {
			kd.MatchText = *kw.MatchText
		}
		data = append(data, kd)
	}
	return data, nil
}

// monthlyTrends compares the current calendar month against the previous one
func (rr *RankingRefresher) monthlyTrends(now time.Time) (map[int64]TrendResult, error) {
	recentStart, recentEnd, priorStart, priorEnd := MonthWindows(now)

	recent, err := rr.metricsRepo.WindowAveragePositions(recentStart, recentEnd)
	if err != nil {
		return nil, fmt.Errorf("monthly recent window: %w", err)
	}
	prior, err := rr.metricsRepo.WindowAveragePositions(priorStart, priorEnd)
	if err != nil {
		return nil, fmt.Errorf("monthly prior window: %w", err)
	}

	return rr.trend.CompareWindows(recent, prior), nil
}

// momentumTrends compares the latest data-bearing dates against the
// preceding ones. Degrades to an empty result when the series is too
// short; that is a no-data state, not an error.
func (rr *RankingRefresher) momentumTrends() (map[int64]TrendResult, error) {
	recentN := rr.cfg.Scoring.MomentumRecentDays
	priorN := rr.cfg.Scoring.MomentumPriorDays

	dates, err := rr.metricsRepo.DataBearingDates(recentN + priorN)
	if err != nil {
		return nil, fmt.Errorf("momentum dates: %w", err)
	}

	recentDates, priorDates, ok := SelectDataBearingWindows(dates, recentN, priorN)
	if !ok {
		return map[int64]TrendResult{}, nil
	}

	recent, err := rr.metricsRepo.AveragePositionsForDates(recentDates)
	if err != nil {
		return nil, fmt.Errorf("momentum recent window: %w", err)
	}
	prior, err := rr.metricsRepo.AveragePositionsForDates(priorDates)
	if err != nil {
		return nil, fmt.Errorf("momentum prior window: %w", err)
	}

	return rr.trend.CompareWindows(recent, prior), nil
}

// aggregateGroups runs the city and page aggregations
func (rr *RankingRefresher) aggregateGroups(kwData []KeywordData, improve []RankedKeyword, now time.Time) (cities, pages []GroupRollup, err error) {
	cityGroups, err := rr.groupRepo.GetGroupsByKind(models.GroupKindCity)
	if err != nil {
		return nil, nil, fmt.Errorf("load city groups: %w", err)
	}
	pageGroups, err := rr.groupRepo.GetGroupsByKind(models.GroupKindPage)
	if err != nil {
		return nil, nil, fmt.Errorf("load page groups: %w", err)
	}

	// Catalog just reloaded; cached patterns may be stale.
	rr.cityPatterns.Reset()
	rr.pagePatterns.Reset()

	cities = rr.aggregator.Aggregate(toGroupDefs(cityGroups), kwData, improve, rr.cityPatterns, now)
	pages = rr.aggregator.Aggregate(toGroupDefs(pageGroups), kwData, improve, rr.pagePatterns, now)
	return cities, pages, nil
}

// pagePriorities groups keywords by normalized target path and computes
// the log-normalized 0-100 priority per page.
func (rr *RankingRefresher) pagePriorities(kwData []KeywordData, monthly map[int64]TrendResult) map[string]float64 {
	byPage := make(map[string][]PageKeywordMetrics)
	for _, k := range kwData {
		if k.TargetURL == "" {
			continue
		}
		path := helpers.NormalizeURLPath(k.TargetURL)
		if path == "" {
			continue
		}

		metric := PageKeywordMetrics{
			Position:    k.Position,
			Clicks:      k.Clicks,
			Impressions: k.Impressions,
			Relevance:   k.Relevance,
		}
		if m, ok := monthly[k.ID]; ok && m.Status != TrendNew {
			metric.MonthlyVariation = m.Variation
			metric.HasTrend = true
		}
		byPage[path] = append(byPage[path], metric)
	}

	raw := make(map[string]float64, len(byPage))
	for path, pageKeywords := range byPage {
		raw[path] = rr.priority.RawScore(pageKeywords, len(pageKeywords))
	}
	return NormalizeScores(raw)
}

// publish stores the snapshot and notifies subscribers
func (rr *RankingRefresher) publish(snapshot *Snapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("⚠️  Failed to marshal snapshot: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ttl := time.Duration(rr.cfg.Scoring.SnapshotTTLMinutes) * time.Minute
	if err := rr.redis.Set(ctx, SnapshotCacheKey, snapshot, ttl); err != nil {
		log.Printf("⚠️  Failed to cache snapshot in Redis: %v", err)
	}

	if err := rr.snapRepo.Save(snapshot.ComputedAt, payload); err != nil {
		log.Printf("⚠️  Failed to persist snapshot: %v", err)
	}
	if err := rr.snapRepo.Prune(snapshot.ComputedAt.AddDate(0, 0, -snapshotRetentionDays)); err != nil {
		log.Printf("⚠️  Failed to prune old snapshots: %v", err)
	}

	if rr.broker != nil {
		rr.broker.BroadcastEvent("ranking_refreshed", map[string]interface{}{
			"computed_at": snapshot.ComputedAt,
			"top":         len(snapshot.Rankings.Top),
			"improve":     len(snapshot.Rankings.Improve),
		})
	}
	if rr.hub != nil {
		rr.hub.Broadcast(payload)
	}
}

// toGroupDefs converts catalog rows to aggregator definitions
func toGroupDefs(rows []models.GeoGroup) []GroupDef {
	defs := make([]GroupDef, len(rows))
	for i, g := range rows {
		defs[i] = GroupDef{
			ID:              g.ID,
			Name:            g.Name,
			Region:          g.Region,
			Kind:            g.Kind,
			LastOptimizedAt: g.LastOptimizedAt,
		}
		if g.URLPath != nil {
			defs[i].URLPath = *g.URLPath
		}
	}
	return defs
}
