package editor

import (
	"log"
	"sort"

	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/compose"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/status"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
)

type CommandID string

const (
	CmdFindTexturesOfSelection CommandID = "find.textures_of_selection"
	CmdSyncBrowser             CommandID = "find.sync_browser"
	CmdFindActorsUsing         CommandID = "find.actors_using_selection"
	CmdClearFound              CommandID = "find.clear"
	CmdMergeSingle             CommandID = "merge.single"
	CmdMergeBatch              CommandID = "merge.batch"
	CmdInferKeywords           CommandID = "merge.infer_keywords"
	CmdDownscale               CommandID = "size.downscale"
	CmdResetSize               CommandID = "size.reset"
	CmdRestoreSize             CommandID = "size.restore"
	CmdAssetDownscale          CommandID = "asset.downscale"
	CmdAssetResetSize          CommandID = "asset.reset"
	CmdModeFind                CommandID = "mode.find"
	CmdModeMerge               CommandID = "mode.merge"
	CmdSaveSettings            CommandID = "settings.save"
)

type Command struct {
	ID      CommandID
	Label   string
	Tooltip string
	// nil means always enabled
	CanExecute func(s *Session) bool
	Execute    func(s *Session) error
	// toggle commands report their state
	IsChecked func(s *Session) bool
}

var ErrDisabled = errors.New("Command is disabled")

var commands = make(map[CommandID]*Command)

func RegisterCommand(c *Command) {
	if _, exists := commands[c.ID]; exists {
		log.Panicf("[editor] Command %q registered twice", c.ID)
	}
	commands[c.ID] = c
}

func GetCommand(id CommandID) (*Command, bool) {
	c, ok := commands[id]
	return c, ok
}

func (s *Session) CanExecute(id CommandID) bool {
	c, ok := commands[id]
	return ok && (c.CanExecute == nil || c.CanExecute(s))
}

// Runs command if it is enabled. Validation errors are already shown to
// the user as dialog, other errors are reported on the status line.
func (s *Session) Execute(id CommandID) error {
	c, ok := commands[id]
	if !ok {
		return errors.Errorf("Unknown command %q", id)
	}
	if c.CanExecute != nil && !c.CanExecute(s) {
		return errors.Wrapf(ErrDisabled, "%s", id)
	}
	log.Printf("[editor] Executing %s", id)
	if err := c.Execute(s); err != nil {
		if !isUserError(err) {
			status.Error("%s failed: %v", c.Label, err)
		}
		return errors.Wrapf(err, "%s", id)
	}
	return nil
}

func isUserError(err error) bool {
	var blocked *texture.DownscaleBlockedError
	return compose.IsValidationError(err) || errors.As(err, &blocked)
}

type CommandState struct {
	ID      CommandID `json:"id"`
	Label   string    `json:"label"`
	Tooltip string    `json:"tooltip,omitempty"`
	Enabled bool      `json:"enabled"`
	Checked *bool     `json:"checked,omitempty"`
}

func (s *Session) commandState(c *Command) CommandState {
	st := CommandState{ID: c.ID, Label: c.Label, Tooltip: c.Tooltip, Enabled: s.CanExecute(c.ID)}
	if c.IsChecked != nil {
		checked := c.IsChecked(s)
		st.Checked = &checked
	}
	return st
}

func (s *Session) CommandStates() []CommandState {
	result := make([]CommandState, 0, len(commands))
	for _, c := range commands {
		result = append(result, s.commandState(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func hasSelectedFound(s *Session) bool { return len(s.selectedFound()) != 0 }

func init() {
	RegisterCommand(&Command{
		ID:         CmdFindTexturesOfSelection,
		Label:      "Find Textures",
		Tooltip:    "Find all textures used by selected actors",
		CanExecute: func(s *Session) bool { return len(s.actors) != 0 },
		Execute:    (*Session).FindTexturesOfSelection,
	})
	RegisterCommand(&Command{
		ID:         CmdSyncBrowser,
		Label:      "Browse To",
		Tooltip:    "Select textures in content browser",
		CanExecute: hasSelectedFound,
		Execute:    (*Session).SyncBrowserToFound,
	})
	RegisterCommand(&Command{
		ID:         CmdFindActorsUsing,
		Label:      "Find Actors",
		Tooltip:    "Select actors using selected textures",
		CanExecute: func(s *Session) bool { return s.world != nil && hasSelectedFound(s) },
		Execute: func(s *Session) error {
			_, err := s.FindActorsUsingSelection()
			return err
		},
	})
	RegisterCommand(&Command{
		ID:         CmdClearFound,
		Label:      "Clear",
		CanExecute: func(s *Session) bool { return len(s.found) != 0 },
		Execute: func(s *Session) error {
			s.ClearFound()
			return nil
		},
	})
	RegisterCommand(&Command{
		ID:         CmdMergeSingle,
		Label:      "Merge",
		Tooltip:    "Remap textures channels to new texture",
		CanExecute: (*Session).CanMerge,
		Execute: func(s *Session) error {
			_, err := s.MergeSingle()
			return err
		},
	})
	RegisterCommand(&Command{
		ID:         CmdMergeBatch,
		Label:      "Batch",
		Tooltip:    "Merge every texture set matched by channel keywords",
		CanExecute: (*Session).CanBatch,
		Execute: func(s *Session) error {
			_, err := s.BatchMerge(nil)
			return err
		},
	})
	RegisterCommand(&Command{
		ID:         CmdInferKeywords,
		Label:      "Auto Keyword",
		Tooltip:    "Infer channel keywords from source texture names",
		CanExecute: (*Session).CanInferKeywords,
		Execute: func(s *Session) error {
			_, err := s.InferKeywords()
			return err
		},
	})
	RegisterCommand(&Command{
		ID:         CmdDownscale,
		Label:      "DownScale",
		Tooltip:    "Set texture half the texture size",
		CanExecute: hasSelectedFound,
		Execute:    func(s *Session) error { return s.DownscaleTextures(s.selectedFoundPaths()) },
	})
	RegisterCommand(&Command{
		ID:         CmdResetSize,
		Label:      "Reset Size",
		Tooltip:    "Set texture back to full resolution",
		CanExecute: hasSelectedFound,
		Execute:    func(s *Session) error { return s.ResetTextureSizes(s.selectedFoundPaths()) },
	})
	RegisterCommand(&Command{
		ID:         CmdRestoreSize,
		Label:      "Restore Size",
		Tooltip:    "Set texture back to its size before downscaling",
		CanExecute: hasSelectedFound,
		Execute: func(s *Session) error {
			_, err := s.RestoreTextureSizes(s.selectedFoundPaths())
			return err
		},
	})
	RegisterCommand(&Command{
		ID:         CmdAssetDownscale,
		Label:      "DownScale texture",
		Tooltip:    "Set texture half the texture size",
		CanExecute: func(s *Session) bool { return len(s.browser) != 0 },
		Execute:    func(s *Session) error { return s.DownscaleTextures(s.browser) },
	})
	RegisterCommand(&Command{
		ID:         CmdAssetResetSize,
		Label:      "Reset texture size",
		Tooltip:    "Set texture back to full resolution",
		CanExecute: func(s *Session) bool { return len(s.browser) != 0 },
		Execute:    func(s *Session) error { return s.ResetTextureSizes(s.browser) },
	})
	RegisterCommand(&Command{
		ID:        CmdModeFind,
		Label:     "Find",
		Tooltip:   "Find textures used by actors and actors using textures",
		Execute:   func(s *Session) error { return s.SetMode(ModeFind) },
		IsChecked: func(s *Session) bool { return s.mode == ModeFind },
	})
	RegisterCommand(&Command{
		ID:        CmdModeMerge,
		Label:     "Merge",
		Tooltip:   "Texture merging mode allows merge texture channels",
		Execute:   func(s *Session) error { return s.SetMode(ModeMerge) },
		IsChecked: func(s *Session) bool { return s.mode == ModeMerge },
	})
	RegisterCommand(&Command{
		ID:         CmdSaveSettings,
		Label:      "Save Settings",
		CanExecute: func(s *Session) bool { return s.settingsPath != "" },
		Execute:    func(s *Session) error { return s.Settings.Save(s.settingsPath) },
	})
}
