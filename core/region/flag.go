package region

import (
	"strings"
	"sync"
)

// FlagValue is the marshaled value of a region flag. The concrete types are
// the ones declared in this file.
type FlagValue interface {
	isFlagValue()
}

// StringFlag is a free-form text value, e.g. a greeting message.
type StringFlag string

// BoolFlag is a toggle.
type BoolFlag bool

// IntFlag is an integral number.
type IntFlag int64

// FloatFlag is a floating point number.
type FloatFlag float64

// EnumFlag is the name of an enum constant. It is stored as a plain string.
type EnumFlag string

// VectorFlag is a raw floating point position.
type VectorFlag struct {
	X, Y, Z float64
}

// LocationFlag is a position with a view direction, e.g. a teleport target.
type LocationFlag struct {
	Position  VectorFlag
	Direction VectorFlag
	Yaw       float64
	Pitch     float64
}

// ListFlag is an ordered collection of values, e.g. blocked commands.
type ListFlag []FlagValue

func (StringFlag) isFlagValue()   {}
func (BoolFlag) isFlagValue()     {}
func (IntFlag) isFlagValue()      {}
func (FloatFlag) isFlagValue()    {}
func (EnumFlag) isFlagValue()     {}
func (VectorFlag) isFlagValue()   {}
func (LocationFlag) isFlagValue() {}
func (ListFlag) isFlagValue()     {}

// FlagRegistry records the flag names whose values are enum constants.
// Enum and string values are stored the same way, so decoding asks the
// registry which one a stored string stands for.
type FlagRegistry struct {
	mu    sync.RWMutex
	enums map[string]struct{}
}

// NewFlagRegistry creates a registry knowing the given enum flag names.
func NewFlagRegistry(enums ...string) *FlagRegistry {
	f := &FlagRegistry{enums: make(map[string]struct{})}
	f.RegisterEnum(enums...)
	return f
}

// RegisterEnum marks flag names as holding enum constants. Blank names are
// ignored.
func (f *FlagRegistry) RegisterEnum(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			f.enums[name] = struct{}{}
		}
	}
}

// IsEnum reports whether name holds enum constants. A nil registry knows
// no enums.
func (f *FlagRegistry) IsEnum(name string) bool {
	if f == nil {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.enums[name]
	return ok
}

// DefaultFlags is the registry used when decoding stored regions. It starts
// with the enum flags of the stock flag set.
var DefaultFlags = NewFlagRegistry("game-mode", "weather-lock")
