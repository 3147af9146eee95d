package normalize

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/figvars/pkg/core"
)

// BuildTree groups variables into one folder per collection, with nested
// folders for every "/"-separated name prefix. Each variable id appears once
// regardless of how many modes it has.
//
// Folder ids are "<collectionId>/<path>", so expansion state keyed by id
// survives a rebuild.
func BuildTree(collections []core.Collection, vars []core.Variable, expanded map[string]bool) []*core.TreeNode {
	roots := make([]*core.TreeNode, 0, len(collections))
	rootByID := make(map[string]*core.TreeNode, len(collections))
	for _, c := range collections {
		root := &core.TreeNode{
			ID:         c.ID,
			Name:       c.Name,
			Type:       core.NodeFolder,
			IsExpanded: expanded[c.ID],
		}
		roots = append(roots, root)
		rootByID[c.ID] = root
	}

	folders := make(map[string]*core.TreeNode)
	leaves := make(map[string]bool)

	for _, v := range vars {
		root, ok := rootByID[v.CollectionID]
		if !ok || leaves[v.ID] {
			continue
		}
		leaves[v.ID] = true

		segments := splitName(v.Name)
		if len(segments) == 0 {
			continue
		}

		parent := root
		for i := 0; i < len(segments)-1; i++ {
			path := strings.Join(segments[:i+1], "/")
			id := v.CollectionID + "/" + path
			folder, ok := folders[id]
			if !ok {
				folder = &core.TreeNode{
					ID:         id,
					Name:       segments[i],
					Type:       core.NodeFolder,
					Path:       path,
					IsExpanded: expanded[id],
				}
				folders[id] = folder
				parent.Children = append(parent.Children, folder)
			}
			parent = folder
		}

		parent.Children = append(parent.Children, &core.TreeNode{
			ID:   v.ID,
			Name: segments[len(segments)-1],
			Type: core.NodeFile,
			Path: strings.Join(segments[:len(segments)-1], "/"),
		})
	}

	for _, root := range roots {
		sortChildren(root)
	}
	return roots
}

// ExpandedState collects the ids of expanded nodes in a tree.
func ExpandedState(tree []*core.TreeNode) map[string]bool {
	state := make(map[string]bool)
	for _, n := range tree {
		n.Walk(func(node *core.TreeNode) bool {
			if node.IsExpanded {
				state[node.ID] = true
			}
			return true
		})
	}
	return state
}

func splitName(name string) []string {
	parts := strings.Split(name, "/")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sortChildren orders folders before variables, then by name.
func sortChildren(n *core.TreeNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Type != b.Type {
			return a.Type == core.NodeFolder
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortChildren(c)
	}
}
