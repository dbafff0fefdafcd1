package models

import "time"

// Vocabularies the dashboard forms are populated from. Catalog writes are
// validated against these.
var (
	ProduceItems = []string{
		"Tomato", "Potato", "Onion", "Carrot", "Brinjal",
		"Cabbage", "Lettuce", "Cucumber", "Bell Pepper", "Spinach",
	}
	Regions = []string{"Lahore", "Karachi", "Islamabad", "Multan", "Peshawar", "Faisalabad"}
)

// PriceRecord is a single produce price listing in the market catalog.
// The id is the creation-time timestamp and is unique within the catalog.
type PriceRecord struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Region     string    `json:"region" validate:"required"`
	Price      float64   `json:"price" validate:"gte=0"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recordedAt" validate:"required"`
}

// PriceHistoryPoint is one day of the synthetic 7-day price series.
type PriceHistoryPoint struct {
	Label   string    `json:"label" validate:"required"`
	ISODate time.Time `json:"isoDate" validate:"required"`
	Price   float64   `json:"price" validate:"gte=0"`
	Volume  int       `json:"volume" validate:"gt=0"`
}
