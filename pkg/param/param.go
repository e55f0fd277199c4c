// Package param implements the generator parameter surface of spec §4.1:
// case-insensitive string-named, range-clamped, atomically published
// parameters, set from the control thread and read from the render thread
// without locking.
package param

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// Common parameter errors.
var (
	ErrInvalidParam      = errors.New("unknown parameter name")
	ErrValueBelowMinimum = errors.New("value below minimum")
	ErrValueAboveMaximum = errors.New("value above maximum")
	ErrParamExists       = errors.New("parameter name already registered")
)

// Info is a parameter's static metadata.
type Info struct {
	Name         string
	Module       string // path for grouping, e.g. "filter/cutoff"
	MinValue     float64
	MaxValue     float64
	DefaultValue float64
	Stepped      bool
}

// Parameter is a named, ranged value with lock-free concurrent access.
type Parameter struct {
	Info  Info
	value int64 // atomic storage for float64 bits
}

// Value returns the current value atomically.
func (p *Parameter) Value() float64 {
	return bitsToFloat(atomic.LoadInt64(&p.value))
}

// SetValue clamps value to [MinValue,MaxValue] and stores it atomically.
func (p *Parameter) SetValue(value float64) {
	if value < p.Info.MinValue {
		value = p.Info.MinValue
	} else if value > p.Info.MaxValue {
		value = p.Info.MaxValue
	}
	atomic.StoreInt64(&p.value, floatToBits(value))
}

func floatToBits(f float64) int64 {
	return int64(*(*uint64)(unsafe.Pointer(&f)))
}

func bitsToFloat(b int64) float64 {
	return *(*float64)(unsafe.Pointer(&b))
}
