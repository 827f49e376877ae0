package cellar

import (
	"context"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/store"
	"github.com/sandevgo/drambot/pkg/log"
)

const annexKey = "annex"

// Engine merges the bundled core partition with the user's annex
// partition under one queryable view. Core records never change after
// load; all mutation operations target the annex only.
type Engine struct {
	mu     sync.Mutex
	policy *bluemonday.Policy
	core   []core.Record
	annex  *store.Value[[]core.Record]
	remote []core.RemoteHighlight
}

// RecordPatch names the record fields to change; nil fields are left
// alone.
type RecordPatch struct {
	Name       *string
	Distillery *string
	Region     *string
	Type       *string
	Age        *string
	ABV        *float64
	Rating     *float64
	Notes      *[]string
	Story      *string
}

func NewEngine(ctx context.Context, s *store.Store) (*Engine, error) {
	coreRecords, err := loadCoreRecords()
	if err != nil {
		return nil, err
	}
	log.FromCtx(ctx).Info().Int("records", len(coreRecords)).Msg("core dataset loaded")

	return &Engine{
		policy: bluemonday.StrictPolicy(),
		core:   coreRecords,
		annex:  store.NewValue(ctx, s, annexKey, []core.Record{}),
	}, nil
}

// All returns core records followed by annex records, insertion order
// within each partition.
func (e *Engine) All() []core.Record {
	annex := e.annex.Get()
	out := make([]core.Record, 0, len(e.core)+len(annex))
	out = append(out, e.core...)
	out = append(out, annex...)
	return out
}

// Add sanitizes and validates the draft, assigns the next id over the
// union of both partitions, and appends it to the annex. The id must be
// computed over BOTH partitions: allocating over the annex alone would
// collide with core ids once the bundled dataset grows.
func (e *Engine) Add(ctx context.Context, draft core.Record) (core.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.sanitizeRecord(draft)
	rec.Provenance = core.ProvenanceAnnex
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}

	annex := e.annex.Get()
	rec.ID = maxID(e.core, annex) + 1
	rec.LastUpdated = time.Now().UTC()

	next := make([]core.Record, 0, len(annex)+1)
	next = append(next, annex...)
	next = append(next, rec)
	if err := e.annex.Set(ctx, next); err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

// Update applies the patch to an annex record. Core ids and unknown ids
// are a silent no-op: the second return is false and nothing mutates.
func (e *Engine) Update(ctx context.Context, id int, p RecordPatch) (core.Record, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	annex := e.annex.Get()
	idx := -1
	for i, r := range annex {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Record{}, false, nil
	}

	rec := annex[idx]
	if p.Name != nil {
		rec.Name = e.sanitizeField(*p.Name)
	}
	if p.Distillery != nil {
		rec.Distillery = e.sanitizeField(*p.Distillery)
	}
	if p.Region != nil {
		rec.Region = e.sanitizeField(*p.Region)
	}
	if p.Type != nil {
		rec.Type = e.sanitizeField(*p.Type)
	}
	if p.Age != nil {
		rec.Age = e.sanitizeField(*p.Age)
	}
	if p.ABV != nil {
		rec.ABV = *p.ABV
	}
	if p.Rating != nil {
		rec.Rating = *p.Rating
	}
	if p.Notes != nil {
		notes := make([]string, len(*p.Notes))
		for i, n := range *p.Notes {
			notes[i] = e.sanitizeField(n)
		}
		rec.Notes = notes
	}
	if p.Story != nil {
		rec.Story = e.sanitizeField(*p.Story)
	}

	if err := rec.Validate(); err != nil {
		return core.Record{}, false, err
	}
	rec.LastUpdated = time.Now().UTC()

	next := make([]core.Record, len(annex))
	copy(next, annex)
	next[idx] = rec
	if err := e.annex.Set(ctx, next); err != nil {
		return core.Record{}, false, err
	}
	return rec, true, nil
}

// Remove deletes an annex record. Core ids and unknown ids are a silent
// no-op, same contract as Update.
func (e *Engine) Remove(ctx context.Context, id int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	annex := e.annex.Get()
	next := make([]core.Record, 0, len(annex))
	for _, r := range annex {
		if r.ID != id {
			next = append(next, r)
		}
	}
	if len(next) == len(annex) {
		return false, nil
	}

	if err := e.annex.Set(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// SetRemote replaces the cached community highlights. The cache only
// feeds prompt context; it never joins the merged view.
func (e *Engine) SetRemote(highlights []core.RemoteHighlight) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remote = highlights
}

// RemoteHighlights returns the cached community highlights.
func (e *Engine) RemoteHighlights() []core.RemoteHighlight {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.RemoteHighlight, len(e.remote))
	copy(out, e.remote)
	return out
}

// Wait blocks until the annex partition has been read from the store.
func (e *Engine) Wait(ctx context.Context) error {
	return e.annex.Wait(ctx)
}

// Err exposes the annex handle's last soft failure for status display.
func (e *Engine) Err() error {
	return e.annex.Err()
}

func (e *Engine) sanitizeRecord(r core.Record) core.Record {
	r.Name = e.sanitizeField(r.Name)
	r.Distillery = e.sanitizeField(r.Distillery)
	r.Region = e.sanitizeField(r.Region)
	r.Type = e.sanitizeField(r.Type)
	r.Age = e.sanitizeField(r.Age)
	r.Story = e.sanitizeField(r.Story)

	notes := make([]string, len(r.Notes))
	for i, n := range r.Notes {
		notes[i] = e.sanitizeField(n)
	}
	r.Notes = notes
	return r
}

// sanitizeField strips markup so a record field can never smuggle tags
// into a rendered context. The unescape restores plain text the strict
// policy entity-encoded (ampersands, quotes).
func (e *Engine) sanitizeField(s string) string {
	clean := e.policy.Sanitize(strings.TrimSpace(s))
	return strings.TrimSpace(html.UnescapeString(clean))
}

// maxID scans the records that exist right now. Removing the highest
// annex record frees its id for the next add, so an export taken before
// the remove can hold that id against a different bottle.
func maxID(lists ...[]core.Record) int {
	max := 0
	for _, list := range lists {
		for _, r := range list {
			if r.ID > max {
				max = r.ID
			}
		}
	}
	return max
}
