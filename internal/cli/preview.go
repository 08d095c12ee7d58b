package cli

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
	"github.com/matzehuels/mosaic/pkg/present"
	"github.com/matzehuels/mosaic/pkg/refit"
	"github.com/matzehuels/mosaic/pkg/sink"
)

// previewUnit is the number of layout units per terminal column.
const previewUnit = 8.0

// previewKeys maps keys to engine commands.
var previewKeys = map[string]string{
	"f": string(mosaic.CommandFit),
	"r": string(mosaic.CommandReset),
}

// previewCommand shows a live mosaic in the terminal that refits when the
// window is resized.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		lf    layoutFlags
		probe bool
	)

	cmd := &cobra.Command{
		Use:   "preview [manifest]",
		Short: "Show an interactive mosaic that refits on terminal resize",
		Long: `Show an interactive mosaic in the terminal.

The container width follows the terminal width. Resizing the window refits the
layout after the configured refit delay.

Keys: f refit, r reset, p cycle overflow policy, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := c.resolveLayout(cmd.Flags(), &lf)
			if err != nil {
				return err
			}
			items, title, _, err := pipeline.LoadItems(pipeline.Options{
				Manifest: args[0],
				Probe:    probe,
				Logger:   c.Logger,
			})
			if err != nil {
				return err
			}
			if title == "" {
				title = args[0]
			}

			m, err := newPreviewModel(title, items, cfg, c.Logger)
			if err != nil {
				return err
			}
			defer m.close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			return nil
		},
	}

	lf.register(cmd.Flags())
	cmd.Flags().BoolVar(&probe, "probe", false, "read image headers for items without dimensions")
	return cmd
}

// fitMsg reports that the engine finished a pass.
type fitMsg struct{}

// previewModel is the bubbletea model of the preview command. Layout
// passes run on the refit scheduler; completion is signalled through fits.
type previewModel struct {
	title   string
	items   []mosaic.Item
	box     *mosaic.Box
	swapper *present.Swapper
	sched   *refit.Scheduler
	fits    chan struct{}
	logger  *log.Logger

	mu     sync.Mutex
	cfg    mosaic.Config
	engine *mosaic.Engine

	cols, lines int
	sized       bool
	doc         document.Layout
	highRes     int
	status      string
}

func newPreviewModel(title string, items []mosaic.Item, cfg mosaic.Config, logger *log.Logger) (*previewModel, error) {
	m := &previewModel{
		title:   title,
		items:   items,
		box:     mosaic.NewBox(0, items),
		swapper: present.NewSwapper(cfg.HighResWidthThreshold),
		fits:    make(chan struct{}, 1),
		logger:  logger,
		cfg:     cfg,
	}
	engine, err := mosaic.New(m.box, cfg, mosaic.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	m.engine = engine
	m.sched = refit.New(cfg.RefitDelay, m.fit)
	return m, nil
}

// fit runs one pass on the scheduler goroutine.
func (m *previewModel) fit() {
	m.currentEngine().Fit()
	select {
	case m.fits <- struct{}{}:
	default:
	}
}

func (m *previewModel) currentEngine() *mosaic.Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine
}

func (m *previewModel) close() {
	m.sched.Stop()
}

func waitForFit(fits <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-fits; !ok {
			return nil
		}
		return fitMsg{}
	}
}

func (m *previewModel) Init() tea.Cmd {
	return waitForFit(m.fits)
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.lines = msg.Width, msg.Height
		m.box.SetWidth(float64(m.cols) * previewUnit)
		if !m.sized || m.cfg.RefitOnResize {
			m.sized = true
			m.sched.Trigger()
		} else {
			m.status = "resized; press f to refit"
		}
		return m, nil

	case fitMsg:
		m.refresh()
		return m, waitForFit(m.fits)

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "esc", "ctrl+c":
			m.sched.Stop()
			return m, tea.Quit
		case "p":
			m.cyclePolicy()
			return m, nil
		}
		if name, ok := previewKeys[key]; ok {
			m.exec(name)
		}
	}
	return m, nil
}

// exec runs a named engine command and redraws.
func (m *previewModel) exec(name string) {
	cmd, err := mosaic.ParseCommand(name)
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := m.currentEngine().Exec(cmd); err != nil {
		m.status = err.Error()
		return
	}
	if cmd == mosaic.CommandReset {
		m.swapper.Reset()
	}
	m.status = name
	m.refresh()
}

// cyclePolicy switches to the next overflow policy and refits.
func (m *previewModel) cyclePolicy() {
	m.mu.Lock()
	cfg := m.cfg
	for i, p := range mosaic.Policies {
		if p == cfg.OverflowPolicy {
			cfg.OverflowPolicy = mosaic.Policies[(i+1)%len(mosaic.Policies)]
			break
		}
	}
	engine, err := mosaic.New(m.box, cfg, mosaic.WithLogger(m.logger))
	if err == nil {
		m.cfg, m.engine = cfg, engine
	}
	m.mu.Unlock()

	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "policy " + string(cfg.OverflowPolicy)
	engine.Fit()
	m.refresh()
}

// refresh rebuilds the document from the engine's latest layout.
func (m *previewModel) refresh() {
	m.mu.Lock()
	cfg, engine := m.cfg, m.engine
	m.mu.Unlock()

	l := engine.Layout()
	assets := m.swapper.Apply(m.items, l.Placements)
	m.highRes = 0
	for _, a := range assets {
		if a.HighRes {
			m.highRes++
		}
	}
	m.doc = document.Build(l, m.items, assets, cfg)
	m.doc.Title = m.title
}

func (m *previewModel) View() string {
	var b strings.Builder

	m.mu.Lock()
	policy := m.cfg.OverflowPolicy
	m.mu.Unlock()

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d cols · %s · %s · %d rows · %d hidden · %d high-res",
		m.cols, policy, plural(len(m.items), "item"), len(m.doc.Rows), m.doc.Hidden(), m.highRes)))
	b.WriteString("\n")

	body := sink.RenderText(m.doc, m.cols, sink.WithTextLabels())
	if body == "" {
		body = StyleDim.Render("no layout")
	}
	lines := strings.Split(body, "\n")
	if limit := m.lines - 2; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	footer := "f refit · r reset · p policy · q quit"
	if m.status != "" {
		footer = m.status + " · " + footer
	}
	b.WriteString(StyleDim.Render(footer))
	return b.String()
}
