// Package catalog holds the little client-side logic the admin screens need on
// top of the backend's catalog endpoints.
package catalog

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	ParentID *int64 `json:"parent_id"`
}

type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree turns a flat list into a forest. A category is a root when
// it has no parent, names itself, or names a parent that is not in the list.
// Siblings keep their input order. Categories caught in a parent cycle are
// promoted to roots instead of disappearing. Duplicate ids keep the first entry.
func BuildCategoryTree(flat []Category) []*CategoryNode {
	nodes := make(map[int64]*CategoryNode, len(flat))
	order := make([]*CategoryNode, 0, len(flat))
	for _, c := range flat {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &CategoryNode{Category: c, Children: []*CategoryNode{}}
		nodes[c.ID] = n
		order = append(order, n)
	}

	parentOf := make(map[*CategoryNode]*CategoryNode, len(order))
	var roots []*CategoryNode
	for _, n := range order {
		p := parentNode(nodes, n)
		if p == nil {
			roots = append(roots, n)
			continue
		}
		p.Children = append(p.Children, n)
		parentOf[n] = p
	}

	visited := make(map[*CategoryNode]bool, len(order))
	for _, r := range roots {
		mark(r, visited)
	}
	for _, n := range order {
		if visited[n] {
			continue
		}
		if p := parentOf[n]; p != nil {
			p.Children = removeChild(p.Children, n)
			delete(parentOf, n)
		}
		roots = append(roots, n)
		mark(n, visited)
	}

	if roots == nil {
		roots = []*CategoryNode{}
	}
	return roots
}

func parentNode(nodes map[int64]*CategoryNode, n *CategoryNode) *CategoryNode {
	if n.ParentID == nil || *n.ParentID == 0 || *n.ParentID == n.ID {
		return nil
	}
	return nodes[*n.ParentID]
}

func mark(n *CategoryNode, visited map[*CategoryNode]bool) {
	if visited[n] {
		return
	}
	visited[n] = true
	for _, c := range n.Children {
		mark(c, visited)
	}
}

func removeChild(children []*CategoryNode, n *CategoryNode) []*CategoryNode {
	for i, c := range children {
		if c == n {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

// Walk visits every node depth-first, passing its depth starting at 0.
func Walk(roots []*CategoryNode, fn func(n *CategoryNode, depth int)) {
	var visit func(nodes []*CategoryNode, depth int)
	visit = func(nodes []*CategoryNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(roots, 0)
}
