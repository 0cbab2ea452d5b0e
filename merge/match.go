package merge

import (
	"path"
	"sort"
	"strings"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
)

// Replaces the channel keyword inside a group key
const Wildcard = "*"

// Asset taking part in keyword matching
type Asset struct {
	ObjectPath string
	// file name without extension
	Name string
}

type Group struct {
	Key    string                   `json:"key"`
	Assets [config.SlotCount]*Asset `json:"assets"`
	Count  int                      `json:"count"`
}

// Group is usable when every enabled channel contributed an asset
func (g *Group) Valid(enabled int) bool {
	return enabled > 0 && g.Count == enabled
}

// Key of name for keyword, false when keyword is not part of name.
// The last occurrence of keyword is replaced. Empty keyword keys by the
// whole name.
func GroupKey(name, keyword string) (string, bool) {
	if keyword == "" {
		return name, true
	}
	i := strings.LastIndex(name, keyword)
	if i < 0 {
		return "", false
	}
	return name[:i] + Wildcard + name[i+len(keyword):], true
}

// Groups assets by the remainder of their name once the channel keyword
// is cut out. For the same channel and key the last asset wins.
func MatchGroups(assets []Asset, sources [config.SlotCount]config.ChannelSource) []*Group {
	groups := make(map[string]*Group)
	order := make([]string, 0)

	for slot := range sources {
		src := &sources[slot]
		if !src.Enabled {
			continue
		}
		for i := range assets {
			key, ok := GroupKey(assets[i].Name, src.Keyword)
			if !ok {
				continue
			}
			g, exists := groups[key]
			if !exists {
				g = &Group{Key: key}
				groups[key] = g
				order = append(order, key)
			}
			if g.Assets[slot] == nil {
				g.Count++
			}
			g.Assets[slot] = &assets[i]
		}
	}

	result := make([]*Group, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}
	return result
}

func EnabledCount(sources [config.SlotCount]config.ChannelSource) int {
	n := 0
	for i := range sources {
		if sources[i].Enabled {
			n++
		}
	}
	return n
}

// Groups where every enabled channel matched, sorted by key
func ValidGroups(assets []Asset, sources [config.SlotCount]config.ChannelSource) []*Group {
	enabled := EnabledCount(sources)
	result := make([]*Group, 0)
	for _, g := range MatchGroups(assets, sources) {
		if g.Valid(enabled) {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Asset name for the merge result of a group key. Keys may carry a
// directory relative to the input path, it is not part of the name.
// Non empty keyword takes the place of the wildcard.
func GroupOutputName(key, keyword string) string {
	base := path.Base(key)
	if keyword != "" {
		return strings.Replace(base, Wildcard, keyword, 1)
	}
	name := strings.Replace(base, Wildcard, "", 1)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "_- .")
	if name == "" {
		return "T_Merged"
	}
	return name
}

// Package the merge result of a group goes to. With outputPath set the
// directory part of the key is recreated under it, otherwise the result
// is stored next to the first matched asset.
func GroupPackage(g *Group, outputPath string) string {
	if outputPath != "" {
		if dir := path.Dir(g.Key); dir != "." {
			return path.Join(outputPath, dir)
		}
		return outputPath
	}
	for _, a := range g.Assets {
		if a != nil {
			return path.Dir(a.ObjectPath)
		}
	}
	return ""
}
