package categories

import "github.com/Shavkat07/Moneta/internal/domain"

// Node is a category with its children nested under it.
type Node struct {
	domain.Category
	Children []*Node `json:"children"`
}

// BuildTree arranges a flat category list into a forest in two passes: first
// index every node by id, then attach each node to its parent. Rows pointing
// at a missing parent are treated as roots rather than dropped.
func BuildTree(flat []domain.Category) []*Node {
	byID := make(map[int64]*Node, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &Node{Category: flat[i], Children: []*Node{}}
	}

	roots := make([]*Node, 0, len(flat))
	for _, c := range flat {
		node := byID[c.ID]
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
