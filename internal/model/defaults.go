package model

// Shared defaults used by both the panel binary and the simulator.
const (
	DefaultOrigin    = OriginRecentChanges
	DefaultQuantity  = 10
	DefaultFrequency = 60 // seconds
	DefaultNamespace = NamespaceAll
	DefaultDirection = DirectionOlder
	DefaultSkin      = "default"
)

// Bounds for user-tunable values. Stored settings outside these ranges
// are clamped at resolve time.
const (
	MinQuantity  = 1
	MaxQuantity  = 20
	MinFrequency = 30  // seconds
	MaxFrequency = 600 // seconds
)

// DefaultPreferences returns the built-in preference set used when the
// deployment config does not override it.
func DefaultPreferences() Preferences {
	return Preferences{
		Origin:    DefaultOrigin,
		Quantity:  DefaultQuantity,
		Frequency: DefaultFrequency,
		NewOnly:   false,
		Namespace: DefaultNamespace,
		Direction: DefaultDirection,
	}
}
