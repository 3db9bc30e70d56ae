package pages

import (
	"slices"

	"github.com/google/uuid"
)

// computePath materialises the path from the parent chain. Roots without a
// slug live at "/".
func computePath(parent *Page, page *Page) string {
	if parent == nil {
		if page.Slug == "" {
			return "/"
		}
		return "/" + page.Slug + "/"
	}
	return parent.Path + page.Slug + "/"
}

// cascadeDescendants recomputes paths and active flags below page. The
// descendants must be ordered by depth. Only changed rows are returned.
func cascadeDescendants(page *Page, descendants []*Page) []*Page {
	if len(descendants) == 0 {
		return nil
	}
	nodes := map[uuid.UUID]*Page{page.ID: page}
	var changed []*Page
	for _, d := range descendants {
		updated := d.Clone()
		updated.TreeDepth = 0
		nodes[d.ID] = updated
		if d.ParentID == nil {
			continue
		}
		parent, ok := nodes[*d.ParentID]
		if !ok {
			continue
		}
		dirty := false
		if !d.StaticPath {
			if path := computePath(parent, d); path != d.Path {
				updated.Path = path
				dirty = true
			}
		}
		if !parent.IsActive && d.IsActive {
			updated.IsActive = false
			dirty = true
		}
		if dirty {
			changed = append(changed, updated)
		}
	}
	return changed
}

// orderTree arranges pages depth first, siblings by position, and fills
// TreeDepth. Pages whose parent is missing are treated as roots.
func orderTree(records []*Page) []*Page {
	present := make(map[uuid.UUID]bool, len(records))
	for _, record := range records {
		present[record.ID] = true
	}
	children := map[uuid.UUID][]*Page{}
	var roots []*Page
	for _, record := range records {
		if record.ParentID == nil || !present[*record.ParentID] {
			roots = append(roots, record)
			continue
		}
		children[*record.ParentID] = append(children[*record.ParentID], record)
	}

	out := make([]*Page, 0, len(records))
	var walk func(level []*Page, depth int)
	walk = func(level []*Page, depth int) {
		slices.SortStableFunc(level, byPosition)
		for _, page := range level {
			page.TreeDepth = depth
			out = append(out, page)
			walk(children[page.ID], depth+1)
		}
	}
	walk(roots, 0)
	return out
}

func containsID(records []*Page, id uuid.UUID) bool {
	return slices.ContainsFunc(records, func(p *Page) bool { return p.ID == id })
}
