package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// DefaultEssentials is the checklist a complete profile should satisfy.
var DefaultEssentials = []string{
	"Name", "Party", "Position", "State", "Criminal Cases",
	"Education", "Age", "Dynasty Status", "Political Relatives",
}

// Result reports what a resolution pass did.
type Result struct {
	SourcesUsed   model.SourcesUsed
	MissingBefore []string
	MissingAfter  []string
	// Filled counts fields inserted per source name.
	Filled map[string]int
}

// Resolver consults lower tiers for essential fields the Primary pass left
// missing.
type Resolver struct {
	essentials []string
	registry   *Registry
}

// New creates a Resolver. A nil or empty essentials list uses
// DefaultEssentials.
func New(essentials []string, registry *Registry) *Resolver {
	if len(essentials) == 0 {
		essentials = DefaultEssentials
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Resolver{essentials: essentials, registry: registry}
}

// Essentials returns the checklist in use.
func (r *Resolver) Essentials() []string {
	return r.essentials
}

// Resolve fills bag from lower tiers. Fields already present are never
// replaced. Source failures are logged and leave fields unresolved.
func (r *Resolver) Resolve(ctx context.Context, bag *model.FieldBag, subject string) Result {
	res := Result{Filled: make(map[string]int)}
	if bag.CountTier(model.TierPrimary) > 0 {
		res.SourcesUsed.Mark(model.TierPrimary)
	}
	res.MissingBefore = bag.Missing(r.essentials)
	res.MissingAfter = res.MissingBefore

	if subject == "" {
		if len(res.MissingBefore) > 0 {
			zap.L().Debug("resolver: no subject name, skipping lower tiers",
				zap.Strings("missing", res.MissingBefore),
			)
		}
		return res
	}

	for _, src := range r.registry.Ordered() {
		missing := bag.Missing(r.essentials)
		res.MissingAfter = missing
		if len(missing) == 0 {
			zap.L().Debug("resolver: all essentials present",
				zap.String("subject", subject),
				zap.String("skipped", src.Name()),
			)
			break
		}

		n := r.consult(ctx, src, bag, subject, missing)
		if n > 0 {
			res.SourcesUsed.Mark(src.Tier())
			res.Filled[src.Name()] += n
		}
	}
	res.MissingAfter = bag.Missing(r.essentials)
	return res
}

// consult calls one source and inserts its fields. It returns how many
// fields were added. A panicking source is treated like a failed lookup.
func (r *Resolver) consult(ctx context.Context, src Source, bag *model.FieldBag, subject string, missing []string) (added int) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Warn("resolver: source panicked",
				zap.String("source", src.Name()),
				zap.String("subject", subject),
				zap.Any("panic", rec),
			)
			added = 0
		}
	}()

	fields, err := src.Lookup(ctx, subject)
	if err != nil {
		zap.L().Warn("resolver: source lookup failed",
			zap.String("source", src.Name()),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return 0
	}
	if len(fields) == 0 {
		zap.L().Info("resolver: source has no match",
			zap.String("source", src.Name()),
			zap.String("subject", subject),
		)
		return 0
	}

	for _, f := range fields {
		f.Tier = src.Tier()
		if bag.SetIfAbsent(f) {
			added++
		}
	}
	zap.L().Info("resolver: source consulted",
		zap.String("source", src.Name()),
		zap.String("tier", src.Tier().String()),
		zap.Int("missing", len(missing)),
		zap.Int("added", added),
	)
	return added
}
