package editor

import (
	"log"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/compose"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/merge"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/status"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
)

const mergeDialogTitle = "Texture Merge"

func (s *Session) CanMerge() bool {
	for i := 0; i < config.ColorSlotCount; i++ {
		if s.Settings.Sources[i].HasTexture() {
			return true
		}
	}
	return false
}

func (s *Session) CanBatch() bool { return s.Settings.InputPath != "" }

func (s *Session) CanInferKeywords() bool { return len(s.Settings.TexturedSlots()) > 1 }

func (s *Session) composeInput(slot config.Slot, objectPath string) (compose.Input, error) {
	in := compose.Input{Channel: s.Settings.Sources[slot].Channel}
	if objectPath == "" {
		return in, nil
	}
	t, err := s.registry.Load(objectPath)
	if err != nil {
		return in, err
	}
	in.Texture = t.Source
	in.Name = t.Name
	return in, nil
}

// Replaces every reference to old by created and deletes old. Old is
// kept when the levels referencing it cannot be saved.
func (s *Session) replaceAsset(oldPath string, created *registry.AssetData) error {
	old, err := s.registry.Resolve(oldPath)
	if err != nil {
		return err
	}
	if old.ObjectPath == created.ObjectPath {
		return nil
	}
	s.registry.ConsolidateReferences(old, created)
	if s.world != nil {
		if err := s.world.SaveLevels(); err != nil {
			return errors.Wrapf(err, "%s is still referenced", old.ObjectPath)
		}
	}
	if err := s.registry.DeleteAsset(old.ObjectPath); err != nil {
		return err
	}
	s.thumbs.Invalidate(old.ObjectPath)
	return nil
}

// Merges the configured sources into one new texture asset
func (s *Session) MergeSingle() (*registry.AssetData, error) {
	var inputs [config.ColorSlotCount]compose.Input
	defaultName := ""
	defaultPackage := ""
	for i := range inputs {
		src := &s.Settings.Sources[i]
		p := ""
		if src.HasTexture() {
			p = src.Texture
		}
		in, err := s.composeInput(config.Slot(i), p)
		if err != nil {
			return nil, errors.Wrapf(err, "Loading %s source", config.Slot(i))
		}
		inputs[i] = in
		if p != "" && defaultName == "" {
			defaultPackage, defaultName = registry.SplitObjectPath(p)
		}
	}

	rt, err := compose.Compose(inputs)
	if err != nil {
		if compose.IsValidationError(err) {
			status.Dialog(mergeDialogTitle, "%v", err)
		}
		return nil, err
	}

	pkg := s.Settings.OutputPath
	if pkg == "" {
		pkg = defaultPackage
	}
	name := s.Settings.OutputName
	if name == "" {
		name = defaultName
	}
	created, err := s.registry.CreateTexture(pkg, name, rt.Image, texture.DefaultImportSettings())
	if err != nil {
		status.Dialog(mergeDialogTitle, "Fail to save output texture: %v", err)
		return nil, err
	}
	log.Printf("[editor] Merged %s into %q", rt.Name, created.ObjectPath)

	replace := &s.Settings.Sources[config.SlotReplace]
	if replace.HasTexture() {
		if err := s.replaceAsset(replace.Texture, created); err != nil {
			log.Printf("[editor] Failed to replace %q: %v", replace.Texture, err)
			status.Error("Failed to replace %s: %v", replace.Texture, err)
		}
		replace.Texture = ""
	}

	if err := s.SyncBrowserToAssets([]string{created.ObjectPath}); err != nil {
		return created, err
	}
	return created, nil
}

// Writes inferred keywords into the textured sources
func (s *Session) InferKeywords() (merge.Inference, error) {
	slots := s.Settings.TexturedSlots()
	names := make([]string, len(slots))
	for i, slot := range slots {
		_, names[i] = registry.SplitObjectPath(s.Settings.Sources[slot].Texture)
	}
	inf, err := merge.InferKeywords(names)
	if err != nil {
		status.Dialog(mergeDialogTitle, "Can't infer keywords: %v", err)
		return inf, err
	}
	if inf.Applied {
		for i, slot := range slots {
			s.Settings.Sources[slot].Keyword = inf.Keywords[i]
		}
	}
	return inf, nil
}

func (s *Session) inputPath() string {
	return strings.TrimSuffix(path.Clean("/"+s.Settings.InputPath), "/")
}

func (s *Session) matchGroups() ([]*merge.Group, error) {
	if s.Settings.InputPath == "" {
		err := &compose.ValidationError{Reason: "Input directory is empty!"}
		status.Dialog(mergeDialogTitle, "%v", err)
		return nil, err
	}
	root := s.inputPath()
	listed, err := s.registry.ListAssets(root, s.Settings.Recursive)
	if err != nil {
		return nil, err
	}
	assets := make([]merge.Asset, 0, len(listed))
	for _, a := range listed {
		rel, ok := registry.RelativeObjectPath(a.ObjectPath, root)
		if !ok {
			continue
		}
		assets = append(assets, merge.Asset{ObjectPath: a.ObjectPath, Name: rel})
	}
	return merge.ValidGroups(assets, s.Settings.Sources), nil
}

// Keys of the groups a batch merge would produce
func (s *Session) BatchPreview() ([]string, error) {
	groups, err := s.matchGroups()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys, nil
}

type BatchFailure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type BatchResult struct {
	Created []string       `json:"created"`
	Failed  []BatchFailure `json:"failed"`
}

// Merges matched groups, all of them when keys is empty. Failing groups
// are skipped and reported in the result. A group whose texture was
// created but whose replace failed is listed in both.
func (s *Session) BatchMerge(keys []string) (*BatchResult, error) {
	groups, err := s.matchGroups()
	if err != nil {
		return nil, err
	}
	if len(keys) != 0 {
		wanted := make(map[string]bool, len(keys))
		for _, k := range keys {
			wanted[k] = true
		}
		filtered := groups[:0]
		for _, g := range groups {
			if wanted[g.Key] {
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}
	if len(groups) == 0 {
		err := &compose.ValidationError{Reason: "No matched textures"}
		status.Dialog(mergeDialogTitle, "%v", err)
		return nil, err
	}

	result := &BatchResult{Created: make([]string, 0), Failed: make([]BatchFailure, 0)}
	fail := func(key string, err error) {
		log.Printf("[editor] %s merge failed due to %v", key, err)
		result.Failed = append(result.Failed, BatchFailure{Key: key, Reason: err.Error()})
	}

	task := status.BeginTask("Performing Merge", len(groups))
	for _, g := range groups {
		task.Step("%s", g.Key)
		created, err := s.mergeGroup(g)
		if created != nil {
			result.Created = append(result.Created, created.ObjectPath)
		}
		if err != nil {
			fail(g.Key, err)
		}
	}
	task.Finish("Merged %d of %d groups", len(result.Created), len(groups))

	if err := s.SyncBrowserToAssets(result.Created); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Session) mergeGroup(g *merge.Group) (*registry.AssetData, error) {
	var inputs [config.ColorSlotCount]compose.Input
	for i := range inputs {
		p := ""
		if a := g.Assets[i]; a != nil {
			p = a.ObjectPath
		}
		in, err := s.composeInput(config.Slot(i), p)
		if err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	rt, err := compose.Compose(inputs)
	if err != nil {
		return nil, err
	}

	pkg := merge.GroupPackage(g, s.Settings.OutputPath)
	name := merge.GroupOutputName(g.Key, s.Settings.OutputName)
	created, err := s.registry.CreateTexture(pkg, name, rt.Image, texture.DefaultImportSettings())
	if err != nil {
		return nil, err
	}
	if old := g.Assets[config.SlotReplace]; old != nil {
		if err := s.replaceAsset(old.ObjectPath, created); err != nil {
			return created, errors.Wrapf(err, "Replacing %s", old.ObjectPath)
		}
	}
	return created, nil
}
