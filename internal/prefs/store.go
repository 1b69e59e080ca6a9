// Package prefs resolves effective panel preferences by layering
// deployment defaults, locally stored user settings, and an optional
// in-memory override, and persists user changes to both the local
// settings store and the remote per-user options endpoint.
package prefs

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/wikivigil/vigil/internal/model"
)

// SettingKey is the logical name the preference blob is stored under,
// both locally and on the remote options endpoint.
const SettingKey = "vigil-prefs"

// Store layers and persists preferences. The zero value is not usable;
// construct with New.
type Store struct {
	defaults model.Preferences
	local    model.LocalSettings
	remote   model.OptionWriter
}

// New creates a preference store over the given local settings and
// remote options writer. remote may be nil, in which case Persist only
// writes locally.
func New(defaults model.Preferences, local model.LocalSettings, remote model.OptionWriter) *Store {
	return &Store{
		defaults: defaults,
		local:    local,
		remote:   remote,
	}
}

// Resolve produces the effective preferences: defaults, overlaid with
// whatever subset of fields is present in local storage, overlaid with
// override. It never fails; malformed stored settings count as absent.
func (s *Store) Resolve(override *model.PrefPatch) model.Preferences {
	prefs := s.defaults

	if stored, ok := s.loadStored(); ok {
		prefs = stored.Apply(prefs)
	}
	if override != nil {
		prefs = override.Apply(prefs)
	}

	return clamp(prefs)
}

// Persist writes the patch verbatim to local storage and then replicates
// it to the remote options endpoint. The local write is applied
// unconditionally; a remote failure is returned without rolling it back.
// An empty patch resets stored settings so Resolve returns defaults.
func (s *Store) Persist(ctx context.Context, patch model.PrefPatch) error {
	blob, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("prefs: marshal patch: %w", err)
	}

	if err := s.local.Set(SettingKey, string(blob)); err != nil {
		return fmt.Errorf("prefs: local write: %w", err)
	}

	if s.remote == nil {
		return nil
	}
	return s.remote.SaveOption(ctx, SettingKey, string(blob))
}

// Stored returns the currently stored partial settings. The settings
// form merges its patch over this before persisting.
func (s *Store) Stored() model.PrefPatch {
	patch, _ := s.loadStored()
	return patch
}

// loadStored parses the locally stored patch. A missing key or a parse
// failure is treated as "no stored settings"; neither is surfaced.
func (s *Store) loadStored() (model.PrefPatch, bool) {
	var patch model.PrefPatch

	raw, ok := s.local.Get(SettingKey)
	if !ok || raw == "" {
		return patch, false
	}
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		return model.PrefPatch{}, false
	}
	return patch, true
}

// clamp forces numeric fields into their documented ranges so a corrupt
// stored value can never arm a sub-minimum timer or request an
// oversized batch.
func clamp(p model.Preferences) model.Preferences {
	if p.Quantity < model.MinQuantity {
		p.Quantity = model.MinQuantity
	}
	if p.Quantity > model.MaxQuantity {
		p.Quantity = model.MaxQuantity
	}
	if p.Frequency < model.MinFrequency {
		p.Frequency = model.MinFrequency
	}
	if p.Frequency > model.MaxFrequency {
		p.Frequency = model.MaxFrequency
	}
	return p
}
