package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
	"github.com/kisanbazaar/kisan-bazaar/internal/validator"
)

// ErrNotFound is returned when no record with the given id exists.
var ErrNotFound = errors.New("price record not found")

// Input is an admin submission for creating or updating a price record.
type Input struct {
	Name   string  `json:"name" validate:"required"`
	Region string  `json:"region" validate:"required"`
	Price  float64 `json:"price" validate:"gte=0"`
	Unit   string  `json:"unit"`
}

// Service owns the market catalog: the list of price records persisted under
// a single store key. Edits overwrite in place; no history of prior values
// is kept.
type Service struct {
	store    storage.Store
	validate *validator.Validator
	seed     bool
	now      func() time.Time
}

func New(store storage.Store, v *validator.Validator, seedDefaults bool) *Service {
	return &Service{
		store:    store,
		validate: v,
		seed:     seedDefaults,
		now:      time.Now,
	}
}

// List returns the catalog, seeding the default records on first read when
// seeding is enabled.
func (s *Service) List(ctx context.Context) ([]models.PriceRecord, error) {
	records, err := s.load(ctx)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return records, err
	}
	if !s.seed {
		return []models.PriceRecord{}, nil
	}
	seeded := s.defaults()
	if err := s.save(ctx, seeded); err != nil {
		return nil, err
	}
	return seeded, nil
}

// Add creates a new record from the submitted input. Validation failures
// abort the write entirely.
func (s *Service) Add(ctx context.Context, in Input) (models.PriceRecord, error) {
	if err := s.checkInput(in); err != nil {
		return models.PriceRecord{}, err
	}
	records, err := s.List(ctx)
	if err != nil {
		return models.PriceRecord{}, err
	}

	record := models.PriceRecord{
		ID:         s.newID(records),
		Name:       in.Name,
		Region:     in.Region,
		Price:      in.Price,
		Unit:       in.Unit,
		RecordedAt: s.now(),
	}
	records = append(records, record)
	if err := s.save(ctx, records); err != nil {
		return models.PriceRecord{}, err
	}
	return record, nil
}

// Update overwrites the record with the given id in place.
func (s *Service) Update(ctx context.Context, id string, in Input) (models.PriceRecord, error) {
	if err := s.checkInput(in); err != nil {
		return models.PriceRecord{}, err
	}
	records, err := s.List(ctx)
	if err != nil {
		return models.PriceRecord{}, err
	}

	idx := slices.IndexFunc(records, func(r models.PriceRecord) bool { return r.ID == id })
	if idx < 0 {
		return models.PriceRecord{}, ErrNotFound
	}
	records[idx].Name = in.Name
	records[idx].Region = in.Region
	records[idx].Price = in.Price
	records[idx].Unit = in.Unit
	records[idx].RecordedAt = s.now()

	if err := s.save(ctx, records); err != nil {
		return models.PriceRecord{}, err
	}
	return records[idx], nil
}

// Delete removes the record with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	next := slices.DeleteFunc(records, func(r models.PriceRecord) bool { return r.ID == id })
	if len(next) == len(records) {
		return ErrNotFound
	}
	return s.save(ctx, next)
}

func (s *Service) checkInput(in Input) error {
	if err := s.validate.ValidateStruct(in); err != nil {
		return err
	}
	if !slices.Contains(models.ProduceItems, in.Name) {
		return fmt.Errorf("validation failed: unknown produce item %q", in.Name)
	}
	if !slices.Contains(models.Regions, in.Region) {
		return fmt.Errorf("validation failed: unknown region %q", in.Region)
	}
	return nil
}

// newID derives the creation-time id, bumping past collisions so ids stay
// unique within the catalog.
func (s *Service) newID(records []models.PriceRecord) string {
	ms := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		exists := slices.ContainsFunc(records, func(r models.PriceRecord) bool { return r.ID == id })
		if !exists {
			return id
		}
		ms++
	}
}

func (s *Service) load(ctx context.Context) ([]models.PriceRecord, error) {
	raw, err := s.store.Get(ctx, storage.KeyMarketData)
	if err != nil {
		return nil, err
	}
	var records []models.PriceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &storage.DecodeError{Key: storage.KeyMarketData, Err: err}
	}
	for i := range records {
		if err := s.validate.ValidateStruct(records[i]); err != nil {
			return nil, &storage.DecodeError{Key: storage.KeyMarketData, Err: err}
		}
	}
	return records, nil
}

func (s *Service) save(ctx context.Context, records []models.PriceRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return s.store.Set(ctx, storage.KeyMarketData, raw)
}

func (s *Service) defaults() []models.PriceRecord {
	now := s.now()
	return []models.PriceRecord{
		{ID: "1", Name: "Tomato", Region: "Lahore", Price: 45, Unit: "kg", RecordedAt: now},
		{ID: "2", Name: "Potato", Region: "Karachi", Price: 35, Unit: "kg", RecordedAt: now},
		{ID: "3", Name: "Onion", Region: "Islamabad", Price: 55, Unit: "kg", RecordedAt: now},
	}
}
