package domain

// ============================================================================
// Entities
// ============================================================================

// Sample is one annotated mesh of the dataset.
type Sample struct {
	UID        string   `json:"uid"`
	Category   string   `json:"category"`
	PartLabels []string `json:"part_labels"`
}

// Category groups samples in dataset order.
type Category struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// LabelSet is the dataset's semantic label document: categories and their
// samples, both kept in the order the dataset publishes them.
type LabelSet struct {
	Categories []Category

	byCategory map[string]int
	byUID      map[string][2]int
}

// DatasetSummary is what the dashboard header reports.
type DatasetSummary struct {
	SampleCount   int `json:"sample_count"`
	CategoryCount int `json:"category_count"`
}

// LegendEntry maps a part label to the color its faces are drawn with.
type LegendEntry struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// NewLabelSet indexes categories. Sample category fields are filled from
// the enclosing category.
func NewLabelSet(categories []Category) (*LabelSet, error) {
	ls := &LabelSet{
		Categories: categories,
		byCategory: make(map[string]int, len(categories)),
		byUID:      make(map[string][2]int),
	}

	for ci := range ls.Categories {
		c := &ls.Categories[ci]
		if c.Name == "" {
			return nil, ErrInvalidCategory
		}
		if _, dup := ls.byCategory[c.Name]; dup {
			return nil, ErrInvalidLabelSet
		}
		ls.byCategory[c.Name] = ci

		for si := range c.Samples {
			s := &c.Samples[si]
			if s.UID == "" {
				return nil, ErrInvalidUID
			}
			if _, dup := ls.byUID[s.UID]; dup {
				return nil, ErrDuplicateSampleUID
			}
			s.Category = c.Name
			if s.PartLabels == nil {
				s.PartLabels = []string{}
			}
			ls.byUID[s.UID] = [2]int{ci, si}
		}
	}

	return ls, nil
}

func (ls *LabelSet) Category(name string) (*Category, error) {
	if name == "" {
		return nil, ErrInvalidCategory
	}
	ci, ok := ls.byCategory[name]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &ls.Categories[ci], nil
}

func (ls *LabelSet) Sample(uid string) (Sample, error) {
	if uid == "" {
		return Sample{}, ErrInvalidUID
	}
	pos, ok := ls.byUID[uid]
	if !ok {
		return Sample{}, ErrSampleNotFound
	}
	return ls.Categories[pos[0]].Samples[pos[1]], nil
}

// UIDs lists every sample uid in dataset order.
func (ls *LabelSet) UIDs() []string {
	uids := make([]string, 0, len(ls.byUID))
	for _, c := range ls.Categories {
		for _, s := range c.Samples {
			uids = append(uids, s.UID)
		}
	}
	return uids
}

// Samples lists every sample in dataset order.
func (ls *LabelSet) Samples() []Sample {
	out := make([]Sample, 0, len(ls.byUID))
	for _, c := range ls.Categories {
		out = append(out, c.Samples...)
	}
	return out
}

func (ls *LabelSet) SampleCount() int {
	return len(ls.byUID)
}

func (ls *LabelSet) Summary() DatasetSummary {
	return DatasetSummary{SampleCount: ls.SampleCount(), CategoryCount: len(ls.Categories)}
}

// Legend colors part labels by their position in the sample's label list,
// which is the semantic label value stored per face.
func Legend(partLabels []string) []LegendEntry {
	entries := make([]LegendEntry, 0, len(partLabels))
	for i, label := range partLabels {
		entries = append(entries, LegendEntry{Index: i, Label: label, Color: LabelColor(i)})
	}
	return entries
}
