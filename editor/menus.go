package editor

import (
	"github.com/pkg/errors"
)

// Host menus the tool adds entries to
type MenuHook string

const (
	MenuContentBrowserAsset MenuHook = "content_browser.asset"
	MenuLevelActor          MenuHook = "level_editor.actor"
)

type MenuEntry struct {
	Section string
	Command CommandID
	// switches the panel to this mode before running the command
	Mode Mode
}

var menuExtensions = make(map[MenuHook][]MenuEntry)

func ExtendMenu(hook MenuHook, e MenuEntry) {
	menuExtensions[hook] = append(menuExtensions[hook], e)
}

type MenuItem struct {
	Section string    `json:"section"`
	Command CommandID `json:"command"`
	Label   string    `json:"label"`
	Tooltip string    `json:"tooltip,omitempty"`
	Enabled bool      `json:"enabled"`
}

// Entries of hook for the current selection. Menus are hidden entirely
// when nothing they act on is selected.
func (s *Session) Menu(hook MenuHook) []MenuItem {
	result := make([]MenuItem, 0)
	switch hook {
	case MenuContentBrowserAsset:
		if len(s.browser) == 0 {
			return result
		}
	case MenuLevelActor:
		if len(s.actors) == 0 {
			return result
		}
	}
	for _, e := range menuExtensions[hook] {
		c, ok := commands[e.Command]
		if !ok {
			continue
		}
		result = append(result, MenuItem{
			Section: e.Section,
			Command: e.Command,
			Label:   c.Label,
			Tooltip: c.Tooltip,
			Enabled: s.CanExecute(e.Command),
		})
	}
	return result
}

// Runs menu entry of hook bound to id
func (s *Session) ExecuteMenu(hook MenuHook, id CommandID) error {
	for _, e := range menuExtensions[hook] {
		if e.Command != id {
			continue
		}
		if e.Mode != "" {
			if err := s.SetMode(e.Mode); err != nil {
				return err
			}
		}
		return s.Execute(id)
	}
	return errors.Errorf("Menu %q has no entry %q", hook, id)
}

func init() {
	ExtendMenu(MenuContentBrowserAsset, MenuEntry{Section: "Texture Tools", Command: CmdAssetDownscale})
	ExtendMenu(MenuContentBrowserAsset, MenuEntry{Section: "Texture Tools", Command: CmdAssetResetSize})
	ExtendMenu(MenuLevelActor, MenuEntry{Section: "TextureTool", Command: CmdFindTexturesOfSelection, Mode: ModeFind})
}
