package advisory

import (
	"context"
	"log/slog"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

// RemoteAdvisor is the optional text-generation collaborator.
type RemoteAdvisor interface {
	Generate(ctx context.Context, catalog []models.PriceRecord, weatherConditions string) ([]models.AdviceItem, error)
}

// Engine produces the advisory list for a catalog snapshot. The remote
// collaborator is tried first when configured; any failure falls back to the
// deterministic rule battery with no user-visible error. The fallback is a
// hard contract, not best effort.
type Engine struct {
	remote RemoteAdvisor
	now    func() time.Time
}

// NewEngine builds an Engine. remote may be nil (or a typed-nil *Gemini),
// which disables remote generation entirely.
func NewEngine(remote RemoteAdvisor) *Engine {
	return &Engine{remote: remote, now: time.Now}
}

// Advise returns the prioritized advisory list. It has no side effects and
// never mutates the catalog.
func (e *Engine) Advise(ctx context.Context, catalog []models.PriceRecord, weatherConditions string) []models.AdviceItem {
	if items, err := e.tryRemote(ctx, catalog, weatherConditions); err == nil {
		return items
	} else if e.remoteConfigured() {
		slog.Warn("Remote advisory failed, using rule-based advice", "error", err)
	}
	return RuleBased(catalog, e.now())
}

func (e *Engine) tryRemote(ctx context.Context, catalog []models.PriceRecord, weatherConditions string) ([]models.AdviceItem, error) {
	if !e.remoteConfigured() {
		return nil, errRemoteUnconfigured
	}
	// Single attempt, no retry.
	items, err := e.remote.Generate(ctx, catalog, weatherConditions)
	if err != nil {
		return nil, err
	}
	SortByPriority(items)
	return items, nil
}

func (e *Engine) remoteConfigured() bool {
	if e.remote == nil {
		return false
	}
	// A typed-nil *Gemini still satisfies the interface; treat it as absent.
	if g, ok := e.remote.(*Gemini); ok && g == nil {
		return false
	}
	return true
}

type remoteError string

func (e remoteError) Error() string { return string(e) }

const errRemoteUnconfigured = remoteError("remote advisor not configured")
