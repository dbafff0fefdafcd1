package models

import "time"

// AdviceCategory classifies an advisory item.
type AdviceCategory string

const (
	CategoryPrice     AdviceCategory = "price"
	CategoryWeather   AdviceCategory = "weather"
	CategoryPest      AdviceCategory = "pest"
	CategoryMarket    AdviceCategory = "market"
	CategoryTechnique AdviceCategory = "technique"
)

// ValidAdviceCategory reports whether c is one of the known categories.
func ValidAdviceCategory(c AdviceCategory) bool {
	switch c {
	case CategoryPrice, CategoryWeather, CategoryPest, CategoryMarket, CategoryTechnique:
		return true
	}
	return false
}

// AdvicePriority orders advisory items; high sorts before medium before low.
type AdvicePriority string

const (
	PriorityHigh   AdvicePriority = "high"
	PriorityMedium AdvicePriority = "medium"
	PriorityLow    AdvicePriority = "low"
)

// ValidAdvicePriority reports whether p is one of the known priorities.
func ValidAdvicePriority(p AdvicePriority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank returns the sort rank of p. Unknown priorities sort last.
func (p AdvicePriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// AdviceItem is a single farming recommendation. Items are ephemeral:
// recomputed from the current catalog on every request, never persisted.
type AdviceItem struct {
	ID                int            `json:"id"`
	Title             string         `json:"title"`
	Body              string         `json:"body"`
	Category          AdviceCategory `json:"category"`
	Priority          AdvicePriority `json:"priority"`
	RecommendedAction string         `json:"recommendedAction"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}
