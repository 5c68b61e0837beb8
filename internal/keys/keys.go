// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Window movement and sizing
	MoveUp     key.Binding
	MoveDown   key.Binding
	MoveLeft   key.Binding
	MoveRight  key.Binding
	GrowWidth  key.Binding
	GrowHeight key.Binding
	Shrink     key.Binding
	Maximize   key.Binding

	// Paging
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	GoToPage    key.Binding
	GoToSection key.Binding
	Back        key.Binding
	Forward     key.Binding

	// View
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ZoomReset  key.Binding
	FitWidth   key.Binding
	FitPage    key.Binding
	Rotate     key.Binding
	CycleColor key.Binding
	TogglePin  key.Binding

	// Bookmarks
	AddBookmark  key.Binding
	NextBookmark key.Binding
	PrevBookmark key.Binding

	// Window lifecycle
	CycleFocus     key.Binding
	CycleFocusBack key.Binding
	NewMemo        key.Binding
	Duplicate      key.Binding
	CloseWindow    key.Binding
	Rename         key.Binding
	EditNotes      key.Binding

	// General
	Search key.Binding
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Window movement and sizing
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move window up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move window down"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "move window left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "move window right"),
		),
		GrowWidth: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "grow window wider"),
		),
		GrowHeight: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "grow window taller"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "shrink window"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle maximize"),
		),

		// Paging
		NextPage: key.NewBinding(
			key.WithKeys("j", "down", "pgdown"),
			key.WithHelp("j/↓", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("k", "up", "pgup"),
			key.WithHelp("k/↑", "previous page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "last page"),
		),
		GoToPage: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "go to page"),
		),
		GoToSection: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "go to section"),
		),
		Back: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "back in history"),
		),
		Forward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "forward in history"),
		),

		// View
		ZoomIn: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		ZoomReset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset zoom"),
		),
		FitWidth: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "fit to width"),
		),
		FitPage: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "fit whole page"),
		),
		Rotate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rotate page"),
		),
		CycleColor: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle accent color"),
		),
		TogglePin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin window on top"),
		),

		// Bookmarks
		AddBookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark page"),
		),
		NextBookmark: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next bookmark"),
		),
		PrevBookmark: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous bookmark"),
		),

		// Window lifecycle
		CycleFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus next window"),
		),
		CycleFocusBack: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "focus previous window"),
		),
		NewMemo: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open memo window"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "duplicate window"),
		),
		CloseWindow: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close window"),
		),
		Rename: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "rename window"),
		),
		EditNotes: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit window notes"),
		),

		// General
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search document"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
