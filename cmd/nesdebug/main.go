// Command nesdebug is an interactive TUI stepper/debugger, generalizing
// the teacher's bubbletea debugger (hejops-gone's cpu.Cpu.Debug) from a
// single CPU to the full console: CPU registers, PPU dot/scanline, a
// breakpoint list and a live WRAM page table, replacing the plain stdio
// DebugConsole the original jnes-style program used.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"

	"nespkg.dev/coreboard/console"
)

var romPath = flag.String("rom", "", "path to an iNES ROM file")

type model struct {
	nc     *console.Console
	prevPC uint16
	err    error

	breakpoints map[uint16]bool
	running     bool
	log         []string
}

func (m model) Init() tea.Cmd { return nil }

func (m model) stepOnce() model {
	m.prevPC = m.nc.DebugSnapshot().PC
	if _, err := m.nc.StepInstruction(); err != nil {
		m.err = err
		m.running = false
	}
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m = m.stepOnce()
		case "c":
			m.running = true
			for m.running && m.err == nil {
				snap := m.nc.DebugSnapshot()
				if m.breakpoints[snap.PC] {
					m.running = false
					m.log = append(m.log, fmt.Sprintf("breakpoint hit at $%04X", snap.PC))
					break
				}
				m = m.stepOnce()
			}
		case "r":
			m.nc.Reset()
			m.log = append(m.log, "reset")
		case "b":
			snap := m.nc.DebugSnapshot()
			m.breakpoints[snap.PC] = true
			m.log = append(m.log, fmt.Sprintf("breakpoint set at $%04X", snap.PC))
		}
	}
	return m, nil
}

func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		v := m.nc.PeekWRAM(start + i)
		if start+i == m.nc.DebugSnapshot().PC {
			s += fmt.Sprintf("[%02x] ", v)
		} else {
			s += fmt.Sprintf(" %02x  ", v)
		}
	}
	return s
}

func (m model) wramTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}
	lines := []string{header}
	for p := 0; p < 8; p++ {
		lines = append(lines, m.renderPage(uint16(p*16)))
	}
	return strings.Join(lines, "\n")
}

func (m model) status() string {
	s := m.nc.DebugSnapshot()
	var flags string
	for _, f := range []bool{s.P.N, s.P.V, true, s.P.B, s.P.D, s.P.I, s.P.Z, s.P.C} {
		if f {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
 A: %02x
 X: %02x
 Y: %02x
 S: %02x
dot/line: %d/%d  frame: %d
N V _ B D I Z C
%s
breakpoints: %d
`,
		s.PC, m.prevPC, s.A, s.X, s.Y, s.S, s.Cycle, s.Scanline, s.Frame, flags, len(m.breakpoints))
}

func (m model) View() string {
	errLine := ""
	if m.err != nil {
		errLine = "error: " + m.err.Error()
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.wramTable(), m.status()),
		"",
		errLine,
		spew.Sdump(m.nc.DebugSnapshot()),
		strings.Join(m.log, "\n"),
		"",
		"space/j: step  c: run to breakpoint  b: set breakpoint here  r: reset  q: quit",
	)
}

func main() {
	flag.Parse()
	if *romPath == "" {
		glog.Exit("nesdebug: -rom is required")
	}
	data, err := os.ReadFile(*romPath)
	if err != nil {
		glog.Exitf("nesdebug: reading ROM: %v", err)
	}
	nc, err := console.New(console.Options{SampleRate: 44100, PreferredFrameRate: 60})
	if err != nil {
		glog.Exitf("nesdebug: %v", err)
	}
	if err := nc.LoadROM(data); err != nil {
		glog.Exitf("nesdebug: %v", err)
	}

	m, err := tea.NewProgram(model{nc: nc, breakpoints: map[uint16]bool{}}).Run()
	if err != nil {
		glog.Exitf("nesdebug: %v", err)
	}
	if x, ok := m.(model); ok && x.err != nil {
		fmt.Fprintln(os.Stderr, "exited with error:", x.err)
		os.Exit(1)
	}
}
