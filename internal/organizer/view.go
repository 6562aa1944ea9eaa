package organizer

// ViewState is the per-profile board selection.
type ViewState struct {
	Category   string     `json:"category"`
	List       string     `json:"list,omitempty"`
	Tags       []string   `json:"tags"`
	Completion Completion `json:"completion"`
}

func DefaultViewState() ViewState {
	return ViewState{Category: AllCategory, Tags: []string{}, Completion: CompletionAll}
}

// ViewUpdate describes one user action on the board. Nil fields are left untouched.
type ViewUpdate struct {
	Category   *string     `json:"category,omitempty"`
	List       *string     `json:"list,omitempty"`
	Completion *Completion `json:"completion,omitempty"`
	ToggleTag  string      `json:"toggle_tag,omitempty"`
	ClearTags  bool        `json:"clear_tags,omitempty"`
}

// Apply returns the state after u. Switching to a different category clears the tag selection,
// since tag chips are scoped to the active category.
func (v ViewState) Apply(u ViewUpdate) ViewState {
	next := v
	next.Tags = append([]string{}, v.Tags...)

	if u.Category != nil {
		category := *u.Category
		if category == "" {
			category = AllCategory
		}
		if category != next.Category {
			next.Tags = []string{}
		}
		next.Category = category
	}
	if u.List != nil {
		next.List = *u.List
	}
	if u.Completion != nil {
		next.Completion = *u.Completion
	}
	if u.ClearTags {
		next.Tags = []string{}
	}
	if u.ToggleTag != "" {
		next = next.toggleTag(u.ToggleTag)
	}
	return next
}

func (v ViewState) toggleTag(tag string) ViewState {
	for i, t := range v.Tags {
		if t == tag {
			v.Tags = append(v.Tags[:i:i], v.Tags[i+1:]...)
			return v
		}
	}
	v.Tags = append(v.Tags, tag)
	return v
}

func (v ViewState) Filters() Filters {
	return Filters{
		List:       v.List,
		Category:   v.Category,
		Tags:       v.Tags,
		Completion: v.Completion,
	}
}
