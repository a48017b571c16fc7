// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/katalvlaran/mathtoys/store"
)

// Plane geometry: the grid spans [-extent, extent] on both axes.
const (
	gridWidth  = 61
	gridHeight = 25
	extent     = 3.0
	dragStep   = 0.1
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	axisStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	variableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	constantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	derivedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("205")).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	planeStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
	listStyle = lipgloss.NewStyle().PaddingLeft(2)
)

type keyMap struct {
	Next    key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Release key.Binding
	NewVar  key.Binding
	Sum     key.Binding
	Product key.Binding
	Merge   key.Binding
	Save    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Up, k.Release, k.NewVar, k.Sum, k.Product, k.Merge, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Up, k.Down, k.Left, k.Right, k.Release},
		{k.NewVar, k.Sum, k.Product, k.Merge, k.Save, k.Quit},
	}
}

var keys = keyMap{
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓←→/hjkl", "drag")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Left:    key.NewBinding(key.WithKeys("left", "h")),
	Right:   key.NewBinding(key.WithKeys("right", "l")),
	Release: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "release")),
	NewVar:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "variable")),
	Sum:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "sum")),
	Product: key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "product")),
	Merge:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "merge")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

type savedMsg struct {
	rec store.Record
	err error
}

type model struct {
	sheet *quiver.Quiver
	store store.Store
	help  help.Model

	selected int // arrow id, -1 for none
	previous int // arrow id selected before the current one, -1 for none
	held     bool
	status   string
	err      error
}

func newModel(sheet *quiver.Quiver, st store.Store) model {
	m := model{
		sheet:    sheet,
		store:    st,
		help:     help.New(),
		selected: -1,
		previous: -1,
	}
	if arrows := sheet.Arrows(); len(arrows) > 0 {
		m.selected = arrows[0].ID
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.sheet.Tick()
		return m, tick()

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.status = fmt.Sprintf("saved %s", msg.rec.ID)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		m.release()
		m.selectNext()

	case key.Matches(msg, keys.Up):
		m.nudge(complex(0, dragStep))
	case key.Matches(msg, keys.Down):
		m.nudge(complex(0, -dragStep))
	case key.Matches(msg, keys.Left):
		m.nudge(complex(-dragStep, 0))
	case key.Matches(msg, keys.Right):
		m.nudge(complex(dragStep, 0))

	case key.Matches(msg, keys.Release):
		m.release()

	case key.Matches(msg, keys.NewVar):
		m.release()
		a := m.sheet.AddVariable("", complex(0.5, 0.5))
		m.choose(a.ID)
		m.status = "added " + a.Label

	case key.Matches(msg, keys.Sum):
		m.combine(m.sheet.AddSum)
	case key.Matches(msg, keys.Product):
		m.combine(m.sheet.AddProduct)

	case key.Matches(msg, keys.Merge):
		m.release()
		n := m.sheet.MergeCoincident()
		m.status = fmt.Sprintf("merged %d", n)
		if _, err := m.sheet.Arrow(m.selected); err != nil {
			m.selected = -1
			m.selectNext()
		}
		if _, err := m.sheet.Arrow(m.previous); err != nil {
			m.previous = -1
		}

	case key.Matches(msg, keys.Save):
		if m.store == nil {
			m.status = "no store configured"
			return m, nil
		}
		return m, save(m.store, m.sheet.State())
	}
	return m, nil
}

func save(st store.Store, state quiver.State) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		name := time.Now().Format("sheet 2006-01-02 15:04:05")
		rec, err := st.Save(ctx, name, state)
		return savedMsg{rec: rec, err: err}
	}
}

func (m *model) choose(id int) {
	if id == m.selected {
		return
	}
	m.previous = m.selected
	m.selected = id
}

func (m *model) selectNext() {
	arrows := m.sheet.Arrows()
	if len(arrows) == 0 {
		return
	}
	next := arrows[0].ID
	for i, a := range arrows {
		if a.ID == m.selected && i+1 < len(arrows) {
			next = arrows[i+1].ID
			break
		}
	}
	m.choose(next)
}

// nudge drags the selected arrow by delta and keeps holding it.
func (m *model) nudge(delta complex128) {
	z, err := m.sheet.Value(m.selected)
	if err != nil {
		return
	}
	if err := m.sheet.Drag(m.selected, z+delta); err != nil {
		m.err = err
		return
	}
	m.held = true
}

func (m *model) release() {
	if !m.held {
		return
	}
	if err := m.sheet.Release(m.selected); err != nil {
		m.err = err
	}
	m.held = false
}

// combine builds previous∘selected and selects the result.
func (m *model) combine(add func(i, j int) (quiver.Arrow, error)) {
	if m.previous < 0 || m.selected < 0 {
		m.status = "select two arrows with tab first"
		return
	}
	a, err := add(m.previous, m.selected)
	if err != nil {
		m.err = err
		return
	}
	m.release()
	m.choose(a.ID)
	m.status = "added " + a.Label
}

// project maps z to a grid cell; ok is false outside the plane.
func project(z complex128) (col, row int, ok bool) {
	x := (real(z) + extent) / (2 * extent) * float64(gridWidth-1)
	y := (extent - imag(z)) / (2 * extent) * float64(gridHeight-1)
	col, row = int(math.Round(x)), int(math.Round(y))
	if col < 0 || col >= gridWidth || row < 0 || row >= gridHeight {
		return 0, 0, false
	}
	return col, row, true
}

func (m model) View() string {
	arrows := m.sheet.Arrows()

	cells := make([][]string, gridHeight)
	ocol, orow, _ := project(0)
	for r := range cells {
		cells[r] = make([]string, gridWidth)
		for c := range cells[r] {
			switch {
			case r == orow && c == ocol:
				cells[r][c] = axisStyle.Render("+")
			case r == orow:
				cells[r][c] = axisStyle.Render("─")
			case c == ocol:
				cells[r][c] = axisStyle.Render("│")
			default:
				cells[r][c] = dotStyle.Render("·")
			}
		}
	}

	var list strings.Builder
	list.WriteString(titleStyle.Render("Arrows") + "\n\n")
	for _, a := range arrows {
		z, err := m.sheet.Value(a.ID)
		if err != nil {
			continue
		}
		glyph := 'o'
		if a.Label != "" {
			glyph = []rune(a.Label)[0]
		}
		style := styleFor(a.Kind)
		if a.ID == m.selected {
			style = selectedStyle
		}
		if c, r, ok := project(z); ok {
			cells[r][c] = style.Render(string(glyph))
		}
		mark := "  "
		switch a.ID {
		case m.selected:
			mark = "▸ "
		case m.previous:
			mark = "· "
		}
		fmt.Fprintf(&list, "%s%s = %s\n", mark, style.Render(a.Label), formatValue(z))
	}

	rows := make([]string, gridHeight)
	for r := range cells {
		rows[r] = strings.Join(cells[r], "")
	}
	plane := planeStyle.Render(strings.Join(rows, "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, plane, listStyle.Render(list.String()))

	footer := subtleStyle.Render(fmt.Sprintf("error %.2e", m.sheet.TotalError()))
	if m.held {
		footer += subtleStyle.Render("  holding")
	}
	if m.status != "" {
		footer += "  " + m.status
	}
	if m.err != nil {
		footer += "  " + errorStyle.Render(m.err.Error())
	}
	return body + "\n" + footer + "\n" + m.help.View(keys) + "\n"
}

func styleFor(k quiver.Kind) lipgloss.Style {
	switch k {
	case quiver.Variable:
		return variableStyle
	case quiver.Constant:
		return constantStyle
	default:
		return derivedStyle
	}
}

func formatValue(z complex128) string {
	sign := '+'
	im := imag(z)
	if im < 0 {
		sign, im = '-', -im
	}
	return fmt.Sprintf("%.3f %c %.3fi", real(z), sign, im)
}
