package param

import (
	"strings"
	"sync"
	"sync/atomic"
)

// ChangeListener is called whenever a registered parameter's value changes.
type ChangeListener func(name string, oldValue, newValue float64)

// MaxListeners bounds the number of change listeners a Manager will hold.
const MaxListeners = 16

// Manager is a generator's full parameter set, keyed case-insensitively by
// name. A generator builds its Manager once at construction time; every
// method takes the Manager's lock, so Register may run alongside
// Get/Set/ForEach.
type Manager struct {
	mutex      sync.RWMutex
	params     map[string]*Parameter
	order      []string

	listeners     [MaxListeners]ChangeListener
	listenerCount int32
}

// NewManager creates an empty parameter manager.
func NewManager() *Manager {
	return &Manager{params: make(map[string]*Parameter)}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a new parameter, initialized to its DefaultValue.
func (m *Manager) Register(info Info) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	k := key(info.Name)
	if _, exists := m.params[k]; exists {
		return ErrParamExists
	}

	p := &Parameter{Info: info}
	p.SetValue(info.DefaultValue)

	m.params[k] = p
	m.order = append(m.order, k)
	return nil
}

// RegisterAll registers multiple parameters, stopping at the first error.
func (m *Manager) RegisterAll(infos ...Info) error {
	for _, info := range infos {
		if err := m.Register(info); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of registered parameters.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.params)
}

// Get returns a parameter's current value. Unknown names return 0, per
// spec §4.1's "silently ignore unknown parameter names" rule extended to
// reads.
func (m *Manager) Get(name string) float64 {
	m.mutex.RLock()
	p, exists := m.params[key(name)]
	m.mutex.RUnlock()
	if !exists {
		return 0
	}
	return p.Value()
}

// GetOr returns a parameter's current value, or def if name is unknown.
func (m *Manager) GetOr(name string, def float64) float64 {
	m.mutex.RLock()
	p, exists := m.params[key(name)]
	m.mutex.RUnlock()
	if !exists {
		return def
	}
	return p.Value()
}

// Set clamps and stores value for the named parameter. Unknown names are
// silently ignored, per spec §4.1.
func (m *Manager) Set(name string, value float64) {
	m.mutex.RLock()
	p, exists := m.params[key(name)]
	m.mutex.RUnlock()
	if !exists {
		return
	}

	old := p.Value()
	p.SetValue(value)
	if newVal := p.Value(); newVal != old {
		m.notifyListeners(p.Info.Name, old, newVal)
	}
}

// GetParameter returns the Parameter object itself for direct atomic
// access from a render loop (avoids a map lookup per sample).
func (m *Manager) GetParameter(name string) (*Parameter, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	p, exists := m.params[key(name)]
	return p, exists
}

// AddListener registers a parameter change listener.
func (m *Manager) AddListener(listener ChangeListener) bool {
	if listener == nil {
		return false
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	count := atomic.LoadInt32(&m.listenerCount)
	if count >= MaxListeners {
		return false
	}
	m.listeners[count] = listener
	atomic.AddInt32(&m.listenerCount, 1)
	return true
}

func (m *Manager) notifyListeners(name string, oldValue, newValue float64) {
	m.mutex.RLock()
	count := atomic.LoadInt32(&m.listenerCount)
	var listeners [MaxListeners]ChangeListener
	copy(listeners[:count], m.listeners[:count])
	m.mutex.RUnlock()

	for i := int32(0); i < count; i++ {
		if listeners[i] != nil {
			listeners[i](name, oldValue, newValue)
		}
	}
}

// ResetToDefaults restores every parameter to its declared default.
func (m *Manager) ResetToDefaults() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, k := range m.order {
		m.params[k].SetValue(m.params[k].Info.DefaultValue)
	}
}

// ForEach calls fn for every parameter in registration order.
func (m *Manager) ForEach(fn func(Info, float64)) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, k := range m.order {
		p := m.params[k]
		fn(p.Info, p.Value())
	}
}

// GetAll returns a snapshot of every parameter's current value by name.
func (m *Manager) GetAll() map[string]float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	out := make(map[string]float64, len(m.params))
	for _, k := range m.order {
		p := m.params[k]
		out[p.Info.Name] = p.Value()
	}
	return out
}
