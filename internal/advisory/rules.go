package advisory

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

// RuleBased evaluates the fixed advisory battery against the full catalog.
// It is deterministic, reads only its inputs, and never mutates the catalog.
func RuleBased(catalog []models.PriceRecord, now time.Time) []models.AdviceItem {
	var advice []models.AdviceItem

	if tomato, ok := findByName(catalog, "Tomato"); ok && tomato.Price < 40 {
		advice = append(advice, models.AdviceItem{
			ID:    1,
			Title: "Tomato Price Alert",
			Body: fmt.Sprintf("Tomato prices are currently low at ₹%s/kg. Consider holding your stock until prices recover. Market demand is expected to increase in 3-4 days.",
				formatPrice(tomato.Price)),
			Category:          models.CategoryPrice,
			Priority:          models.PriorityHigh,
			RecommendedAction: "Store in cool conditions and monitor market daily",
			GeneratedAt:       now,
		})
	}

	if potato, ok := findByName(catalog, "Potato"); ok && potato.Price > 50 {
		advice = append(advice, models.AdviceItem{
			ID:    2,
			Title: "Potato Selling Opportunity",
			Body: fmt.Sprintf("Potato prices are strong at ₹%s/kg. This is an optimal time to sell if you have stock available.",
				formatPrice(potato.Price)),
			Category:          models.CategoryMarket,
			Priority:          models.PriorityHigh,
			RecommendedAction: "Contact buyers and arrange transportation",
			GeneratedAt:       now,
		})
	}

	advice = append(advice,
		models.AdviceItem{
			ID:                3,
			Title:             "Rain Expected This Week",
			Body:              "Rain is forecasted for the coming days. Ensure proper drainage in all fields to prevent waterlogging and crop damage.",
			Category:          models.CategoryWeather,
			Priority:          models.PriorityHigh,
			RecommendedAction: "Check drainage systems and clear blocked channels",
			GeneratedAt:       now,
		},
		models.AdviceItem{
			ID:                4,
			Title:             "Pest Alert - Monsoon Season",
			Body:              "During monsoon season, pest activity increases significantly. Implement integrated pest management (IPM) strategies and monitor crops closely.",
			Category:          models.CategoryPest,
			Priority:          models.PriorityMedium,
			RecommendedAction: "Apply organic pest control and increase field monitoring",
			GeneratedAt:       now,
		},
		models.AdviceItem{
			ID:                5,
			Title:             "Crop Rotation Recommendation",
			Body:              "Based on your cultivation patterns, consider rotating crops to maintain soil fertility and reduce pest buildup.",
			Category:          models.CategoryTechnique,
			Priority:          models.PriorityMedium,
			RecommendedAction: "Plan next season crop rotation strategy",
			GeneratedAt:       now,
		},
	)

	if onion, ok := findByName(catalog, "Onion"); ok && onion.Price > 60 {
		advice = append(advice, models.AdviceItem{
			ID:    6,
			Title: "Onion Market Premium",
			Body: fmt.Sprintf("Onions are trading at a premium price of ₹%s/kg. Check supply levels before increasing production next season.",
				formatPrice(onion.Price)),
			Category:          models.CategoryMarket,
			Priority:          models.PriorityMedium,
			RecommendedAction: "Review market trends and plan seed purchases",
			GeneratedAt:       now,
		})
	}

	SortByPriority(advice)
	return advice
}

// SortByPriority orders items high before medium before low, preserving
// generation order within a rank.
func SortByPriority(items []models.AdviceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.Rank() < items[j].Priority.Rank()
	})
}

// findByName returns the first record with the given name, matching the
// dashboard behavior of citing the first listing.
func findByName(catalog []models.PriceRecord, name string) (models.PriceRecord, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r, true
		}
	}
	return models.PriceRecord{}, false
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
