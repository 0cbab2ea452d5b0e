package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
)

func testAssets(names ...string) []Asset {
	result := make([]Asset, len(names))
	for i, n := range names {
		result[i] = Asset{ObjectPath: "/Game/T/" + n, Name: n}
	}
	return result
}

func sources(keywords map[config.Slot]string) [config.SlotCount]config.ChannelSource {
	var s [config.SlotCount]config.ChannelSource
	for slot, kw := range keywords {
		s[slot] = config.ChannelSource{Channel: config.Channel(slot % 4), Enabled: true, Keyword: kw}
	}
	return s
}

func groupKeys(groups []*Group) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

func TestMatchGroupsRequiresEveryEnabledChannel(t *testing.T) {
	assets := testAssets("A_x", "B_x", "A_y", "C_y")

	two := sources(map[config.Slot]string{config.SlotR: "A_", config.SlotG: "B_"})
	valid := ValidGroups(assets, two)
	require.Equal(t, []string{"*x"}, groupKeys(valid))
	assert.Equal(t, "A_x", valid[0].Assets[config.SlotR].Name)
	assert.Equal(t, "B_x", valid[0].Assets[config.SlotG].Name)

	all := MatchGroups(assets, two)
	counts := make(map[string]int)
	for _, g := range all {
		counts[g.Key] = g.Count
	}
	assert.Equal(t, map[string]int{"*x": 2, "*y": 1}, counts)

	three := sources(map[config.Slot]string{config.SlotR: "A_", config.SlotG: "B_", config.SlotB: "C_"})
	assert.Empty(t, ValidGroups(assets, three))

	withBy := append(testAssets("B_y"), assets...)
	assert.Equal(t, []string{"*y"}, groupKeys(ValidGroups(withBy, three)))
}

func TestMatchGroupsSkipsDisabledAndMissingKeyword(t *testing.T) {
	assets := testAssets("T_Rock_D", "T_Rock_N", "T_Tree_D")
	s := sources(map[config.Slot]string{config.SlotR: "_D", config.SlotG: "_N"})
	s[config.SlotB] = config.ChannelSource{Keyword: "_R"}

	valid := ValidGroups(assets, s)
	assert.Equal(t, []string{"T_Rock*"}, groupKeys(valid))
}

func TestEmptyKeywordUsesWholeName(t *testing.T) {
	assets := testAssets("T_Mask", "T_Mask_D")
	s := sources(map[config.Slot]string{config.SlotR: ""})
	groups := ValidGroups(assets, s)
	assert.Equal(t, []string{"T_Mask", "T_Mask_D"}, groupKeys(groups))

	key, ok := GroupKey("T_Mask", "")
	assert.True(t, ok)
	assert.Equal(t, "T_Mask", key)
}

func TestSameKeyLastAssetWins(t *testing.T) {
	assets := []Asset{
		{ObjectPath: "/Game/A/T_Rock_D", Name: "T_Rock_D"},
		{ObjectPath: "/Game/B/T_Rock_D", Name: "T_Rock_D"},
	}
	s := sources(map[config.Slot]string{config.SlotR: "_D"})
	groups := ValidGroups(assets, s)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, "/Game/B/T_Rock_D", groups[0].Assets[config.SlotR].ObjectPath)
}

func TestGroupKeyReplacesLastOccurrence(t *testing.T) {
	key, ok := GroupKey("T_D_Wall_D", "_D")
	assert.True(t, ok)
	assert.Equal(t, "T_D_Wall*", key)

	_, ok = GroupKey("T_Wall", "_N")
	assert.False(t, ok)
}

func TestGroupOutputName(t *testing.T) {
	assert.Equal(t, "T_Hero_01", GroupOutputName("T_Hero_*_01", ""))
	assert.Equal(t, "T_Rock", GroupOutputName("T_Rock_*", ""))
	assert.Equal(t, "T_Merged", GroupOutputName("*", ""))
	assert.Equal(t, "T_Hero_ORM_01", GroupOutputName("Sub/T_Hero_*_01", "ORM"))

	g := &Group{Key: "T_Rock_*"}
	g.Assets[config.SlotG] = &Asset{ObjectPath: "/Game/Rocks/T_Rock_N"}
	assert.Equal(t, "/Game/Rocks", GroupPackage(g, ""))
	assert.Equal(t, "/Game/Out", GroupPackage(g, "/Game/Out"))

	g.Key = "Cliffs/T_Rock_*"
	assert.Equal(t, "/Game/Out/Cliffs", GroupPackage(g, "/Game/Out"))
}

func TestInferKeywords(t *testing.T) {
	inf, err := InferKeywords([]string{"Hero_Diffuse_01", "Hero_Normal_01"})
	require.NoError(t, err)
	assert.True(t, inf.Applied)
	assert.Equal(t, "Hero_", inf.Prefix)
	assert.Equal(t, "_01", inf.Suffix)
	assert.Equal(t, []string{"Diffuse", "Normal"}, inf.Keywords)
}

func TestInferKeywordsEdgeCases(t *testing.T) {
	inf, err := InferKeywords([]string{"Hero_Diffuse_01"})
	require.NoError(t, err)
	assert.False(t, inf.Applied)

	_, err = InferKeywords([]string{"Diffuse", "Normal"})
	assert.Equal(t, ErrNoCommonAffix, err)

	inf, err = InferKeywords([]string{"T_Rock_D", "T_Rock_N", "T_Rock_ORM"})
	require.NoError(t, err)
	assert.Equal(t, "T_Rock_", inf.Prefix)
	assert.Equal(t, "", inf.Suffix)
	assert.Equal(t, []string{"D", "N", "ORM"}, inf.Keywords)

	// suffix must not overlap prefix
	inf, err = InferKeywords([]string{"aXa", "aa"})
	require.NoError(t, err)
	assert.Equal(t, "a", inf.Prefix)
	assert.Equal(t, "a", inf.Suffix)
	assert.Equal(t, []string{"X", ""}, inf.Keywords)
}

func TestInferKeywordsRespectsRunes(t *testing.T) {
	inf, err := InferKeywords([]string{"T_é_1", "T_è_1"})
	require.NoError(t, err)
	assert.Equal(t, "T_", inf.Prefix)
	assert.Equal(t, "_1", inf.Suffix)
	assert.Equal(t, []string{"é", "è"}, inf.Keywords)
}
