package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/synthcore/pkg/graph"
	"github.com/justyntemme/synthcore/pkg/preset"
)

const (
	sampleRate = 44100
	blockSize  = 256
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	meterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	patchName string
	note      int

	g              *graph.Graph
	voiceModule    graph.Module
	envModule      graph.Module
	moduleNames    []string

	block    []float32
	peak     float64
	released bool
	elapsed  time.Duration
}

func newModel(patchName string, note int) (*model, error) {
	doc, err := preset.LoadPatch(patchName)
	if err != nil {
		return nil, fmt.Errorf("load patch: %w", err)
	}
	g, err := preset.BuildGraph(doc, sampleRate, blockSize)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	voiceModule, _ := g.Module(doc.VoiceModule)
	envModule, _ := g.Module(doc.EnvelopeModule)

	names := g.Modules()
	sort.Strings(names)

	m := &model{
		patchName:   patchName,
		note:        note,
		g:           g,
		voiceModule: voiceModule,
		envModule:   envModule,
		moduleNames: names,
		block:       make([]float32, blockSize*2),
	}

	if vco, ok := voiceModule.(interface{ NoteOn(int) }); ok {
		vco.NoteOn(note)
	}
	if env, ok := envModule.(interface{ Trigger() }); ok {
		env.Trigger()
	}

	return m, nil
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if !m.released {
				if env, ok := m.envModule.(interface{ Release() }); ok {
					env.Release()
				}
				m.released = true
			}
		}
		return m, nil

	case tickMsg:
		m.g.Render(m.block, blockSize)
		m.peak = peakLevel(m.block)
		m.elapsed += 60 * time.Millisecond
		return m, tick()
	}
	return m, nil
}

func peakLevel(buf []float32) float64 {
	var peak float64
	for _, s := range buf {
		v := math.Abs(float64(s))
		if v > peak {
			peak = v
		}
	}
	return peak
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf(" synthtui — %s ", m.patchName)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("note %d   elapsed %s   released=%v\n\n", m.note, m.elapsed.Round(100*time.Millisecond), m.released)))

	barWidth := 40
	filled := int(m.peak * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := meterStyle.Render(strings.Repeat("#", filled)) + strings.Repeat(".", barWidth-filled)
	b.WriteString(fmt.Sprintf("output [%s] %.3f\n\n", bar, m.peak))

	b.WriteString(labelStyle.Render("modules:\n"))
	for _, name := range m.moduleNames {
		b.WriteString(fmt.Sprintf("  - %s\n", name))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: release   q: quit"))
	return b.String()
}
