package prefs

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"pgregory.net/rapid"

	"github.com/wikivigil/vigil/internal/model"
)

// mapSettings is an in-memory LocalSettings for tests.
type mapSettings struct {
	values map[string]string
	setErr error
}

func newMapSettings() *mapSettings {
	return &mapSettings{values: make(map[string]string)}
}

func (m *mapSettings) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mapSettings) Set(key, value string) error {
	m.values[key] = value
	return m.setErr
}

// recordingRemote captures remote option writes.
type recordingRemote struct {
	keys   []string
	values []string
	err    error
}

func (r *recordingRemote) SaveOption(_ context.Context, key, value string) error {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	return r.err
}

func defaults() model.Preferences {
	return model.DefaultPreferences()
}

func TestResolve_NoStoredSettingsYieldsDefaults(t *testing.T) {
	t.Parallel()

	s := New(defaults(), newMapSettings(), nil)

	got := s.Resolve(nil)
	if got != defaults() {
		t.Fatalf("Resolve() = %+v, want defaults %+v", got, defaults())
	}
}

func TestResolve_StoredSubsetOverridesDefaults(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	local.values[SettingKey] = `{"origin":"watchlist","quantity":5}`

	got := New(defaults(), local, nil).Resolve(nil)

	if got.Origin != model.OriginWatchlist {
		t.Errorf("Origin = %q, want watchlist", got.Origin)
	}
	if got.Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", got.Quantity)
	}
	// Untouched fields fall through to defaults.
	if got.Frequency != model.DefaultFrequency {
		t.Errorf("Frequency = %d, want default %d", got.Frequency, model.DefaultFrequency)
	}
	if got.Namespace != model.DefaultNamespace {
		t.Errorf("Namespace = %q, want default %q", got.Namespace, model.DefaultNamespace)
	}
}

func TestResolve_OverrideWinsOverStored(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	local.values[SettingKey] = `{"quantity":5,"direction":"newer"}`

	three := 3
	got := New(defaults(), local, nil).Resolve(&model.PrefPatch{Quantity: &three})

	if got.Quantity != 3 {
		t.Errorf("Quantity = %d, want override 3", got.Quantity)
	}
	if got.Direction != model.DirectionNewer {
		t.Errorf("Direction = %q, want stored newer", got.Direction)
	}
}

func TestResolve_MalformedStoredSettingsFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	local.values[SettingKey] = `{not json`

	got := New(defaults(), local, nil).Resolve(nil)
	if got != defaults() {
		t.Fatalf("Resolve() with malformed store = %+v, want defaults", got)
	}
}

func TestResolve_ClampsOutOfRangeStoredValues(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	local.values[SettingKey] = `{"quantity":999,"frequency":1}`

	got := New(defaults(), local, nil).Resolve(nil)
	if got.Quantity != model.MaxQuantity {
		t.Errorf("Quantity = %d, want clamped %d", got.Quantity, model.MaxQuantity)
	}
	if got.Frequency != model.MinFrequency {
		t.Errorf("Frequency = %d, want clamped %d", got.Frequency, model.MinFrequency)
	}
}

// Resolve is total and layered: for any stored subset and any override
// subset, every field is populated, and override > stored > defaults
// field-by-field.
func TestResolve_LayeringProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		genPatch := func(label string) model.PrefPatch {
			var p model.PrefPatch
			if rapid.Bool().Draw(t, label+"_hasOrigin") {
				v := rapid.SampledFrom([]string{model.OriginRecentChanges, model.OriginWatchlist}).Draw(t, label+"_origin")
				p.Origin = &v
			}
			if rapid.Bool().Draw(t, label+"_hasQuantity") {
				v := rapid.IntRange(model.MinQuantity, model.MaxQuantity).Draw(t, label+"_quantity")
				p.Quantity = &v
			}
			if rapid.Bool().Draw(t, label+"_hasFrequency") {
				v := rapid.IntRange(model.MinFrequency, model.MaxFrequency).Draw(t, label+"_frequency")
				p.Frequency = &v
			}
			if rapid.Bool().Draw(t, label+"_hasDirection") {
				v := rapid.SampledFrom([]string{model.DirectionOlder, model.DirectionNewer}).Draw(t, label+"_direction")
				p.Direction = &v
			}
			return p
		}

		stored := genPatch("stored")
		override := genPatch("override")

		blob, err := json.Marshal(stored)
		if err != nil {
			t.Fatalf("marshal stored: %v", err)
		}
		local := newMapSettings()
		local.values[SettingKey] = string(blob)

		got := New(defaults(), local, nil).Resolve(&override)

		want := override.Apply(stored.Apply(defaults()))
		if got != want {
			t.Fatalf("Resolve() = %+v, want layered %+v", got, want)
		}
	})
}

func TestPersist_WritesLocalAndRemote(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	remote := &recordingRemote{}
	s := New(defaults(), local, remote)

	qty := 7
	if err := s.Persist(context.Background(), model.PrefPatch{Quantity: &qty}); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	raw, ok := local.Get(SettingKey)
	if !ok {
		t.Fatal("local settings not written")
	}
	var stored model.PrefPatch
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored settings not parseable: %v", err)
	}
	if stored.Quantity == nil || *stored.Quantity != 7 {
		t.Fatalf("stored patch = %+v, want quantity 7", stored)
	}

	if len(remote.keys) != 1 || remote.keys[0] != SettingKey {
		t.Fatalf("remote writes = %v, want one write of %q", remote.keys, SettingKey)
	}
	if remote.values[0] != raw {
		t.Fatalf("remote value %q differs from local %q", remote.values[0], raw)
	}
}

func TestPersist_RemoteFailureKeepsLocalWrite(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	remote := &recordingRemote{err: errors.New("network down")}
	s := New(defaults(), local, remote)

	qty := 4
	err := s.Persist(context.Background(), model.PrefPatch{Quantity: &qty})
	if err == nil {
		t.Fatal("Persist() = nil, want remote error")
	}

	// Local write is authoritative and not rolled back.
	if got := s.Resolve(nil); got.Quantity != 4 {
		t.Fatalf("Resolve().Quantity = %d after failed remote write, want 4", got.Quantity)
	}
}

func TestPersist_EmptyPatchResetsToDefaults(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	local.values[SettingKey] = `{"quantity":3,"origin":"watchlist"}`
	s := New(defaults(), local, nil)

	if err := s.Persist(context.Background(), model.PrefPatch{}); err != nil {
		t.Fatalf("Persist(empty) error = %v", err)
	}

	if got := s.Resolve(nil); got != defaults() {
		t.Fatalf("Resolve() after reset = %+v, want defaults %+v", got, defaults())
	}
}

func TestStored_ReturnsPersistedSubset(t *testing.T) {
	t.Parallel()

	local := newMapSettings()
	local.values[SettingKey] = `{"frequency":120}`

	stored := New(defaults(), local, nil).Stored()
	if stored.Frequency == nil || *stored.Frequency != 120 {
		t.Fatalf("Stored() = %+v, want frequency 120", stored)
	}
	if stored.Origin != nil {
		t.Fatalf("Stored().Origin = %v, want nil", *stored.Origin)
	}
}
