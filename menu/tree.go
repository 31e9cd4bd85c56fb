package menu

import (
	"sort"

	"github.com/openthedoor/authkit/rbac"
)

// Type classifies a navigation entry.
type Type int

const (
	// TypeDirectory groups child menus without a target of its own.
	TypeDirectory Type = 1
	// TypeMenu is a navigable screen.
	TypeMenu Type = 2
	// TypeButton is an in-screen action rendered from the menu table.
	TypeButton Type = 3
)

// Menu is one navigation record as fetched from the persistence layer.
// Permission is the code a caller must hold to see the entry; empty means
// visible to everyone.
type Menu struct {
	ID         int64
	ParentID   int64
	Code       string
	Name       string
	Type       Type
	Permission string
	SortOrder  int
	Visible    bool
	Status     rbac.Status
}

// Node is a menu with its attached subtree.
type Node struct {
	Menu
	Children []*Node
}

// FilterForPermissions keeps the menus whose permission code is empty or a
// member of effective. Input order is preserved.
func FilterForPermissions(menus []Menu, effective rbac.Set) []Menu {
	out := make([]Menu, 0, len(menus))
	for _, m := range menus {
		if m.Permission == "" || effective.Contains(m.Permission) {
			out = append(out, m)
		}
	}
	return out
}

// BuildTree assembles the filtered flat list into a forest rooted at the
// menus whose ParentID equals rootParentID. Children attach only through a
// parent present in the list: a menu excluded by filtering takes its whole
// subtree with it, even when a descendant would individually qualify.
// Siblings are ordered by SortOrder ascending, ties keep input order.
func BuildTree(menus []Menu, rootParentID int64) []*Node {
	if len(menus) == 0 {
		return nil
	}

	// One pass to index children by parent; the recursive attach below is
	// then pure map lookup instead of re-scanning the list per node.
	index := make(map[int64][]*Node, len(menus))
	for _, m := range menus {
		index[m.ParentID] = append(index[m.ParentID], &Node{Menu: m})
	}
	for _, siblings := range index {
		sortSiblings(siblings)
	}

	return attach(index, rootParentID)
}

func attach(index map[int64][]*Node, parentID int64) []*Node {
	nodes := index[parentID]
	for _, node := range nodes {
		node.Children = attach(index, node.ID)
	}
	return nodes
}

// ChildrenOf returns the direct children of parentID from the flat list,
// ordered like tree siblings. Used for on-demand expansion without
// building the full tree.
func ChildrenOf(menus []Menu, parentID int64) []Menu {
	var out []Menu
	for _, m := range menus {
		if m.ParentID == parentID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

func sortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].SortOrder < nodes[j].SortOrder
	})
}
