package regions

import (
	"iter"

	"github.com/goliatone/go-feincms/internal/renderer"
)

// Section is a run of consecutive items sharing a section tag. The empty tag
// is the default section.
type Section struct {
	Key   string
	Items []renderer.Item
}

// Sections yields the runs of items in order. A new run starts whenever the
// section tag changes, so a tag that reappears later opens a second run.
func Sections(items []renderer.Item) iter.Seq[Section] {
	return func(yield func(Section) bool) {
		var current Section
		open := false
		for _, item := range items {
			key := item.SectionKey()
			if open && key == current.Key {
				current.Items = append(current.Items, item)
				continue
			}
			if open && !yield(current) {
				return
			}
			current = Section{Key: key, Items: []renderer.Item{item}}
			open = true
		}
		if open {
			yield(current)
		}
	}
}
