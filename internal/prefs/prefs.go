// Package prefs restores the saved filter (track, day window, concepts)
// from the client-local store at startup.
package prefs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/logging"
)

// Key is the store key holding the serialized blob.
const Key = "preferences"

type Preferences struct {
	Track    string   `json:"track"`
	Days     int      `json:"days"`
	Concepts []string `json:"concepts"`
}

func Defaults() Preferences {
	return Preferences{Track: filter.AllTracks, Days: filter.DefaultDays, Concepts: []string{}}
}

// KV is the storage the blob lives in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

type blob struct {
	Track    string   `json:"track"`
	Days     *int     `json:"days"`
	Concepts []string `json:"concepts"`
}

// Load returns the saved preferences, or Defaults when nothing usable is
// stored. It never fails: read errors and malformed blobs count as absent.
func (s *Store) Load() Preferences {
	raw, ok, err := s.kv.Get(Key)
	if err != nil {
		logging.Logger().Warn("reading preferences", "err", err)
		return Defaults()
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return Defaults()
	}

	var b blob
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		logging.Logger().Warn("ignoring malformed preferences", "err", err)
		return Defaults()
	}

	p := Preferences{Track: b.Track, Days: filter.DefaultDays, Concepts: b.Concepts}
	if b.Days != nil {
		p.Days = *b.Days
	}
	return Normalize(p)
}

// Save replaces the stored blob with p.
func (s *Store) Save(p Preferences) error {
	data, err := json.Marshal(Normalize(p))
	if err != nil {
		return err
	}
	if err := s.kv.Set(Key, string(data)); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	logging.Logger().Info("preferences saved", "track", p.Track, "days", p.Days, "concepts", len(p.Concepts))
	return nil
}

func (s *Store) Reset() error {
	return s.kv.Delete(Key)
}

// Normalize clamps days, canonicalizes the track and drops blank or repeated
// concepts.
func Normalize(p Preferences) Preferences {
	out := Preferences{
		Track:    filter.NormalizeTrack(p.Track),
		Days:     filter.ClampDays(p.Days),
		Concepts: []string{},
	}
	seen := make(map[string]bool, len(p.Concepts))
	for _, c := range p.Concepts {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out.Concepts = append(out.Concepts, c)
	}
	return out
}

// ApplyBase sets track and days. It must run before the catalog for the
// track is requested.
func ApplyBase(state *filter.State, p Preferences) {
	state.SetTrack(p.Track)
	state.SetDays(p.Days)
}

// ApplyConcepts checks the saved concepts that exist in the catalog already
// applied to state and returns how many were dropped.
func ApplyConcepts(state *filter.State, p Preferences) int {
	dropped := 0
	valid := make(map[string]bool)
	for _, c := range state.Catalog() {
		valid[c] = true
	}
	for _, c := range p.Concepts {
		if !valid[c] {
			dropped++
			continue
		}
		state.SetChecked(c, true)
	}
	if dropped > 0 {
		logging.Logger().Debug("dropped saved concepts missing from catalog", "count", dropped, "track", state.Track())
	}
	return dropped
}

// FromState snapshots the filter for saving.
func FromState(state *filter.State) Preferences {
	return Preferences{
		Track:    state.Track(),
		Days:     state.Days(),
		Concepts: state.Selected(),
	}
}
