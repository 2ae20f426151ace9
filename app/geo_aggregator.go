package app

import (
	"math"
	"sort"
	"strings"
	"time"

	"serp-radar/config"
	"serp-radar/helpers"
)

// GroupDef is the matching definition of one geographic or page group
type GroupDef struct {
	ID              int64
	Name            string
	Region          string
	Kind            string // city, page
	URLPath         string
	LastOptimizedAt *time.Time
}

// GroupRollup is the aggregated output for one surfaced group
type GroupRollup struct {
	GroupID        int64   `json:"group_id"`
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	ToImproveCount int     `json:"to_improve_count"`
	TotalCount     int     `json:"total_count"`
	AvgPosition    float64 `json:"avg_position"`
	PriorityScore  float64 `json:"priority_score"`
}

// groupPatterns is the normalized matching material for one group
type groupPatterns struct {
	nameVariants   []string
	regionVariants []string
	urlPath        string
}

// PatternCache caches normalized group patterns, keyed by group id. The
// cache is owned and invalidated by the caller (the refresher resets it
// when the group catalog reloads), never tied to any object lifetime.
type PatternCache struct {
	patterns map[int64]groupPatterns
}

// NewPatternCache creates an empty pattern cache
func NewPatternCache() *PatternCache {
	return &PatternCache{patterns: make(map[int64]groupPatterns)}
}

// Invalidate drops one group's cached patterns
func (c *PatternCache) Invalidate(groupID int64) {
	delete(c.patterns, groupID)
}

// Reset drops every cached pattern
func (c *PatternCache) Reset() {
	c.patterns = make(map[int64]groupPatterns)
}

func (c *PatternCache) get(g GroupDef) groupPatterns {
	if p, ok := c.patterns[g.ID]; ok {
		return p
	}
	p := groupPatterns{
		nameVariants:   helpers.NameVariants(g.Name),
		regionVariants: helpers.NameVariants(g.Region),
		urlPath:        helpers.NormalizeURLPath(g.URLPath),
	}
	c.patterns[g.ID] = p
	return p
}

// matchLevel classifies how a keyword matched a group
type matchLevel int

const (
	matchNone matchLevel = iota
	matchRegion
	matchName
)

// GeoPageAggregator groups keywords by city/region name or page URL and
// produces per-group rollups with a priority score. Matching is not
// exclusive: one keyword may count toward several groups.
type GeoPageAggregator struct {
	cooldown time.Duration
}

// NewGeoPageAggregator creates a new aggregator
func NewGeoPageAggregator(cfg config.ScoringConfig) *GeoPageAggregator {
	return &GeoPageAggregator{
		cooldown: time.Duration(cfg.CooldownDays) * 24 * time.Hour,
	}
}

// Aggregate computes the surfaced group rollups, sorted by priority
// descending. A group is dropped when it has no "needs improvement"
// match, when none of those matches is a name-level match (region-only
// matches never surface a group on their own), or when it was optimized
// within the cooldown window.
func (a *GeoPageAggregator) Aggregate(groups []GroupDef, keywords []KeywordData, improve []RankedKeyword, cache *PatternCache, now time.Time) []GroupRollup {
	// Longest name first so the most specific group wins wherever
	// first-match attribution applies ("Saint-Martin-des-Bois" before
	// "Saint-Martin").
	ordered := make([]GroupDef, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Name) > len(ordered[j].Name)
	})

	improveIDs := make(map[int64]bool, len(improve))
	for _, entry := range improve {
		improveIDs[entry.KeywordID] = true
	}

	var rollups []GroupRollup
	for _, g := range ordered {
		if g.LastOptimizedAt != nil && now.Sub(*g.LastOptimizedAt) < a.cooldown {
			continue
		}

		patterns := cache.get(g)

		var (
			totalCount     int
			positionSum    float64
			rankedCount    int
			toImprove      int
			nameLevelMatch bool
		)

		for i := range keywords {
			k := &keywords[i]
			level := matchKeyword(g.Kind, patterns, k)
			if level == matchNone {
				continue
			}

			totalCount++
			if k.Position > 0 {
				positionSum += k.Position
				rankedCount++
			}

			if improveIDs[k.ID] {
				toImprove++
				if level == matchName {
					nameLevelMatch = true
				}
			}
		}

		if toImprove == 0 || !nameLevelMatch {
			continue
		}

		avgPosition := 0.0
		if rankedCount > 0 {
			avgPosition = positionSum / float64(rankedCount)
		}

		rollups = append(rollups, GroupRollup{
			GroupID:        g.ID,
			Name:           g.Name,
			Kind:           g.Kind,
			ToImproveCount: toImprove,
			TotalCount:     totalCount,
			AvgPosition:    round2(avgPosition),
			PriorityScore:  groupPriority(toImprove, totalCount, avgPosition),
		})
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].PriorityScore > rollups[j].PriorityScore
	})
	return rollups
}

// MostSpecificMatch returns the id of the first group the keyword matches
// at name level, with groups evaluated longest-name-first. Used for
// single-group attribution; returns ok=false when nothing matches.
func MostSpecificMatch(groups []GroupDef, k *KeywordData, cache *PatternCache) (int64, bool) {
	ordered := make([]GroupDef, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Name) > len(ordered[j].Name)
	})

	for _, g := range ordered {
		if matchKeyword(g.Kind, cache.get(g), k) == matchName {
			return g.ID, true
		}
	}
	return 0, false
}

// matchKeyword tests one keyword against one group's patterns. City
// groups match by substring containment over normalized text, with a
// weaker region-only fallback. Page groups match by exact normalized URL
// path; a path match counts as name-level.
func matchKeyword(kind string, patterns groupPatterns, k *KeywordData) matchLevel {
	if kind == "page" {
		if patterns.urlPath == "" {
			return matchNone
		}
		if helpers.NormalizeURLPath(k.TargetURL) == patterns.urlPath {
			return matchName
		}
		return matchNone
	}

	text := helpers.NormalizeText(k.MatchString())
	for _, variant := range patterns.nameVariants {
		if variant != "" && strings.Contains(text, variant) {
			return matchName
		}
	}
	for _, variant := range patterns.regionVariants {
		if variant != "" && strings.Contains(text, variant) {
			return matchRegion
		}
	}
	return matchNone
}

// groupPriority computes the rollup priority:
// toImprove * (1 + log2(total)) * (1 / avgPosition), 2 decimals.
// Zero when there is nothing to divide by.
func groupPriority(toImprove, total int, avgPosition float64) float64 {
	if avgPosition <= 0 || total == 0 {
		return 0
	}
	score := float64(toImprove) * (1 + math.Log2(float64(total))) * (1 / avgPosition)
	return round2(score)
}
