package editor

type WidgetType string

const (
	WidgetToolbar       WidgetType = "toolbar"
	WidgetHeader        WidgetType = "header"
	WidgetPropertyGroup WidgetType = "property_group"
	WidgetTextureList   WidgetType = "texture_list"
	WidgetButtonRow     WidgetType = "button_row"
)

type ListColumn struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type Widget struct {
	Type       WidgetType     `json:"type"`
	Label      string         `json:"label,omitempty"`
	Commands   []CommandState `json:"commands,omitempty"`
	Properties []PropertyView `json:"properties,omitempty"`
	Columns    []ListColumn   `json:"columns,omitempty"`
	Items      interface{}    `json:"items,omitempty"`
}

type Layout struct {
	Mode    Mode     `json:"mode"`
	Widgets []Widget `json:"widgets"`
}

var textureListColumns = []ListColumn{
	{Name: "name", Label: "Texture"},
	{Name: "size", Label: "Size"},
	{Name: "source_size", Label: "Source Size"},
}

func (s *Session) buttons(ids ...CommandID) []CommandState {
	result := make([]CommandState, 0, len(ids))
	for _, id := range ids {
		if c, ok := commands[id]; ok {
			result = append(result, s.commandState(c))
		}
	}
	return result
}

// Panel description for the current mode
func (s *Session) Layout() Layout {
	l := Layout{Mode: s.mode}
	l.Widgets = append(l.Widgets, Widget{Type: WidgetToolbar, Commands: s.buttons(CmdModeFind, CmdModeMerge)})

	switch s.mode {
	case ModeFind:
		items := s.found
		if items == nil {
			items = make([]*TextureListItem, 0)
		}
		l.Widgets = append(l.Widgets,
			Widget{Type: WidgetButtonRow, Commands: s.buttons(CmdFindTexturesOfSelection, CmdClearFound)},
			Widget{Type: WidgetTextureList, Label: "Textures", Columns: textureListColumns, Items: items},
			Widget{Type: WidgetButtonRow, Commands: s.buttons(CmdSyncBrowser, CmdFindActorsUsing)},
			Widget{Type: WidgetButtonRow, Commands: s.buttons(CmdDownscale, CmdResetSize, CmdRestoreSize)},
			Widget{Type: WidgetPropertyGroup, Label: "Search", Properties: s.propertyViews(searchProperties)},
		)
	case ModeMerge:
		l.Widgets = append(l.Widgets,
			Widget{Type: WidgetHeader, Label: "Channels"},
			Widget{Type: WidgetPropertyGroup, Label: "Sources", Properties: s.propertyViews(sourceProperties)},
			Widget{Type: WidgetPropertyGroup, Label: "Batch", Properties: s.propertyViews(batchProperties)},
			Widget{Type: WidgetPropertyGroup, Label: "Output", Properties: s.propertyViews(outputProperties)},
			Widget{Type: WidgetButtonRow, Commands: s.buttons(CmdInferKeywords, CmdMergeBatch, CmdMergeSingle)},
			Widget{Type: WidgetButtonRow, Commands: s.buttons(CmdSaveSettings)},
		)
	}
	return l
}
