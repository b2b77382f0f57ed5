package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/expand"
	"github.com/treelinehq/treeline/pkg/pipeline"
	"github.com/treelinehq/treeline/pkg/tree"
	"github.com/treelinehq/treeline/pkg/viewstate"
)

// Tree row styles
var (
	rowSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	rowNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	rowLeafStyle     = lipgloss.NewStyle().Foreground(colorGray)
	rowDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Expand indicators. Leaves get neither.
const (
	indicatorExpanded  = "▾"
	indicatorCollapsed = "▸"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	format    string
	noPersist bool
	noCache   bool
}

// viewCommand creates the view command for interactive tree exploration.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore a tree interactively in the terminal",
		Long: `Explore a JSON or YAML document as a collapsible tree.

Branches start collapsed; toggle them open node by node. The expanded
set is saved on quit and restored next time, and the file is watched
for changes so edits show up live.

Keys:
  ↑/k ↓/j   move
  enter/space  toggle the selected branch
  E         expand all
  C         collapse all
  r         reload from disk
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json or yaml (auto-detected)")
	cmd.Flags().BoolVar(&opts.noPersist, "no-persist", false, "do not save or restore the expanded set")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runView(cmd *cobra.Command, input string, opts *viewOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Input:       input,
		InputFormat: opts.format,
		Logger:      c.Logger,
	}
	root, err := runner.Normalize(cmd.Context(), popts)
	if err != nil {
		return err
	}

	persist := c.Config.View.Persist && !opts.noPersist
	statePath := viewstate.Path(c.Config.StateDir())

	m := newViewModel(input, root)
	if persist {
		m.state = viewstate.Load(statePath)
		if m.state.Input == input {
			m.controller.Restore(m.state.Set())
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := watcher.Add(input); err == nil {
			m.watcher = watcher
		}
		defer watcher.Close()
	}

	m.reload = func() (*tree.Node, error) {
		ropts := popts
		ropts.Refresh = true
		return runner.Normalize(cmd.Context(), ropts)
	}
	m.rebuild()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}

	if persist {
		fm, ok := final.(*viewModel)
		if !ok {
			return nil
		}
		fm.state.Input = input
		fm.state.Record(fm.controller.Expanded())
		if err := viewstate.Save(statePath, fm.state); err != nil {
			printWarning("Could not save view state: %v", err)
		}
	}
	return nil
}

// =============================================================================
// viewModel - Interactive tree exploration
// =============================================================================

// treeRow is one visible line of the tree.
type treeRow struct {
	id         string
	label      string
	depth      int
	expandable bool
	expanded   bool
}

// Messages delivered by the file watcher and reload command.
type (
	fileChangedMsg struct{}
	treeLoadedMsg  struct{ root *tree.Node }
	loadFailedMsg  struct{ err error }
)

// viewModel is the bubbletea model for the view command.
type viewModel struct {
	input      string
	root       *tree.Node
	controller *expand.Controller
	state      *viewstate.State

	rows   []treeRow
	cursor int

	viewport viewport.Model
	ready    bool
	status   string

	watcher *fsnotify.Watcher
	reload  func() (*tree.Node, error)
}

func newViewModel(input string, root *tree.Node) *viewModel {
	return &viewModel{
		input:      input,
		root:       root,
		controller: expand.NewController(tree.ExpandableIDs(root)),
		state:      viewstate.New(),
	}
}

func (m *viewModel) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return watchFile(m.watcher)
}

// watchFile blocks until the watched file changes and reports it as a
// message. The command is re-issued after every delivery so the watch
// stays alive for the whole session.
func watchFile(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					return fileChangedMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.syncViewport()
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			m.syncViewport()
		case "enter", " ":
			if m.cursor < len(m.rows) {
				m.controller.Toggle(m.rows[m.cursor].id)
				m.rebuild()
			}
		case "E":
			m.controller.ExpandAll()
			m.rebuild()
		case "C":
			m.controller.CollapseAll()
			m.rebuild()
		case "r":
			return m, m.reloadCmd()
		}

	case tea.WindowSizeMsg:
		height := msg.Height - 5
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.syncViewport()

	case fileChangedMsg:
		return m, tea.Batch(m.reloadCmd(), watchFile(m.watcher))

	case treeLoadedMsg:
		m.root = msg.root
		// Keep what survives: ids still expandable stay expanded
		m.controller.SetExpandable(tree.ExpandableIDs(m.root))
		m.status = "reloaded"
		m.rebuild()

	case loadFailedMsg:
		m.status = fmt.Sprintf("reload failed: %v", msg.err)
	}

	return m, nil
}

func (m *viewModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		root, err := m.reload()
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return treeLoadedMsg{root: root}
	}
}

// rebuild recomputes the visible rows from the tree and expanded set.
func (m *viewModel) rebuild() {
	expanded := m.controller.Expanded()
	m.rows = m.rows[:0]
	m.appendRows(m.root, 0, expanded)

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.syncViewport()
}

// appendRows walks the visible subtree in document order: a node's
// children are visible only when the node is expanded.
func (m *viewModel) appendRows(n *tree.Node, depth int, expanded expand.Set) {
	if n == nil {
		return
	}
	expandable := len(n.Children) > 0
	open := expandable && expanded.Has(n.ID)
	m.rows = append(m.rows, treeRow{
		id:         n.ID,
		label:      n.Label,
		depth:      depth,
		expandable: expandable,
		expanded:   open,
	})
	if !open {
		return
	}
	for _, child := range n.Children {
		m.appendRows(child, depth+1, expanded)
	}
}

// syncViewport refreshes the viewport content and keeps the cursor row
// inside the visible window.
func (m *viewModel) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRows())
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	}
	if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *viewModel) renderRows() string {
	var b strings.Builder
	for i, row := range m.rows {
		indicator := " "
		if row.expandable {
			indicator = indicatorCollapsed
			if row.expanded {
				indicator = indicatorExpanded
			}
		}

		line := strings.Repeat("  ", row.depth) + indicator + " " + row.label

		switch {
		case i == m.cursor:
			b.WriteString(rowSelectedStyle.Render(line))
		case row.expandable:
			b.WriteString(rowNormalStyle.Render(line))
		default:
			b.WriteString(rowLeafStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *viewModel) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.input))
	if m.status != "" {
		b.WriteString("  " + rowDimStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(rowDimStyle.Render(fmt.Sprintf(
		"[%d/%d]  ↑/↓ move  ⏎ toggle  E expand all  C collapse all  r reload  q quit",
		m.cursor+1, len(m.rows))))
	return b.String()
}
