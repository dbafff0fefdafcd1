package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		record  models.PriceRecord
		wantErr bool
	}{
		{
			name: "Valid Record",
			record: models.PriceRecord{
				ID:         "1700000000000",
				Name:       "Tomato",
				Region:     "Lahore",
				Price:      45,
				Unit:       "kg",
				RecordedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "Missing Name",
			record: models.PriceRecord{
				ID:         "1700000000000",
				Region:     "Lahore",
				Price:      45,
				RecordedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "Negative Price",
			record: models.PriceRecord{
				ID:         "1700000000000",
				Name:       "Tomato",
				Region:     "Lahore",
				Price:      -1,
				RecordedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "Missing Timestamp",
			record: models.PriceRecord{
				ID:     "1700000000000",
				Name:   "Tomato",
				Region: "Lahore",
				Price:  45,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateStruct(tt.record); (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_FieldNameInMessage(t *testing.T) {
	v := New()
	err := v.ValidateStruct(models.PriceRecord{ID: "1", Region: "Lahore", Price: 10, RecordedAt: time.Now()})
	if err == nil {
		t.Fatal("Expected validation error for missing name")
	}
	if !strings.Contains(err.Error(), "Name") {
		t.Errorf("Expected message to name the failing field, got %q", err.Error())
	}
}
