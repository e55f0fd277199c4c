package dsp

// MultiStage is the eight-stage (rate, level) envelope used by the
// phase-distortion / CZ-style generators (spec §4.3). Stages 0..sustainPoint
// run on gate-on and hold; gate-off resumes at sustainPoint+1 through
// endPoint.
type MultiStage struct {
	Rates  [8]float64 // 0-99
	Levels [8]float64 // 0-99
	Sustain int       // sustain-point index
	End     int       // end-point index

	sampleRate float64
	stage      int
	fromLevel  float64
	toLevel    float64
	timeInStage float64
	stageDur    float64
	value       float64
	released    bool
	active      bool
}

// NewMultiStage creates a stage envelope for the given sample rate.
func NewMultiStage(sampleRate float64) *MultiStage {
	return &MultiStage{sampleRate: sampleRate, End: 7}
}

// stageDuration maps a 0-99 rate to seconds: duration = (100-rate)/99*2 + 0.01.
func stageDuration(rate float64) float64 {
	return (100.0-rate)/99.0*2.0 + 0.01
}

// Trigger starts the envelope at stage 0 from its current level, so a
// re-trigger does not jump.
func (m *MultiStage) Trigger() {
	m.stage = 0
	m.fromLevel = m.value
	m.toLevel = m.Levels[0] / 99.0
	m.stageDur = stageDuration(m.Rates[0])
	m.timeInStage = 0
	m.released = false
	m.active = true
}

// Release resumes progression from sustainPoint+1 toward endPoint.
func (m *MultiStage) Release() {
	if !m.active {
		return
	}
	m.released = true
	next := m.Sustain + 1
	if next > m.End {
		m.active = false
		return
	}
	m.stage = next
	m.fromLevel = m.value
	m.toLevel = m.Levels[next] / 99.0
	m.stageDur = stageDuration(m.Rates[next])
	m.timeInStage = 0
}

// IsActive reports whether the envelope is still producing sound.
func (m *MultiStage) IsActive() bool {
	return m.active
}

// Process advances the envelope by one sample and returns its level.
func (m *MultiStage) Process() float64 {
	if !m.active {
		return m.value
	}

	dt := 1.0 / m.sampleRate
	if m.stageDur <= 0 {
		m.value = m.toLevel
	} else {
		progress := m.timeInStage / m.stageDur
		if progress >= 1.0 {
			progress = 1.0
		}
		m.value = m.fromLevel + (m.toLevel-m.fromLevel)*progress
		m.timeInStage += dt
	}

	if m.timeInStage >= m.stageDur {
		if !m.released {
			if m.stage >= m.Sustain {
				// Hold at the sustain point until Release() is called.
				m.stage = m.Sustain
			} else {
				m.stage++
				m.fromLevel = m.toLevel
				m.toLevel = m.Levels[m.stage] / 99.0
				m.stageDur = stageDuration(m.Rates[m.stage])
				m.timeInStage = 0
			}
		} else {
			if m.stage >= m.End {
				m.active = false
			} else {
				m.stage++
				m.fromLevel = m.toLevel
				m.toLevel = m.Levels[m.stage] / 99.0
				m.stageDur = stageDuration(m.Rates[m.stage])
				m.timeInStage = 0
			}
		}
	}

	return m.value
}
