package param

import "errors"

// Builder provides a fluent interface for declaring a parameter's range
// and format before registering it with a Manager.
type Builder struct {
	info Info
	err  error
}

// NewBuilder starts building a parameter named name.
func NewBuilder(name string) *Builder {
	return &Builder{
		info: Info{
			Name:         name,
			MinValue:     0.0,
			MaxValue:     1.0,
			DefaultValue: 0.5,
		},
	}
}

// Module sets the parameter's display group, e.g. "filter/cutoff".
func (b *Builder) Module(module string) *Builder {
	if b.err == nil {
		b.info.Module = module
	}
	return b
}

// Range sets min, max and default together.
func (b *Builder) Range(min, max, defaultValue float64) *Builder {
	if b.err != nil {
		return b
	}
	if min >= max {
		b.err = errors.New("min value must be less than max value")
		return b
	}
	if defaultValue < min || defaultValue > max {
		b.err = errors.New("default value must be within min/max range")
		return b
	}
	b.info.MinValue = min
	b.info.MaxValue = max
	b.info.DefaultValue = defaultValue
	return b
}

// Default sets the default value.
func (b *Builder) Default(defaultValue float64) *Builder {
	if b.err != nil {
		return b
	}
	if defaultValue < b.info.MinValue || defaultValue > b.info.MaxValue {
		b.err = errors.New("default value must be within min/max range")
		return b
	}
	b.info.DefaultValue = defaultValue
	return b
}

// Stepped marks the parameter as taking discrete steps (e.g. waveform
// selector, algorithm index).
func (b *Builder) Stepped() *Builder {
	if b.err == nil {
		b.info.Stepped = true
	}
	return b
}

// Build returns the finished Info, or an error from an earlier step.
func (b *Builder) Build() (Info, error) {
	if b.err != nil {
		return Info{}, b.err
	}
	if b.info.Name == "" {
		return Info{}, errors.New("parameter name is required")
	}
	return b.info, nil
}

// MustBuild returns the finished Info, panicking on error. Intended for
// use in package-level var initialization where the range is a constant.
func (b *Builder) MustBuild() Info {
	info, err := b.Build()
	if err != nil {
		panic(err)
	}
	return info
}
