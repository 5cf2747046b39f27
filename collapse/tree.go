package collapse

import (
	"context"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"cellsplit/fragment"
	"cellsplit/script"
	"cellsplit/utils/debug"
)

// Node is a fragment and fragments it references, in order of marker lines.
type Node struct {
	Name     string
	Index    int
	Children []*Node
}

// Walk calls fn for node and all its descendants, parents first.
func (n *Node) Walk(fn func(n *Node, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Names returns paths of node and all its descendants.
func (n *Node) Names() []string {
	var names []string
	_ = n.Walk(func(n *Node, _ int) error {
		names = append(names, n.Name)
		return nil
	})
	return names
}

// Dump writes indented tree of fragments.
func (n *Node) Dump(w io.Writer) error {
	tw := debug.NewTreeWriter()
	_ = n.Walk(func(n *Node, depth int) error {
		tw.Line(depth, "[%d] %s", n.Index, filepath.Base(n.Name))
		return nil
	})
	_, err := io.WriteString(w, tw.String())
	return err
}

// Scan finds all fragments reachable from root fragment through marker lines.
func Scan(ctx context.Context, store fragment.Store, root string) (*Node, error) {
	pattern, err := fragment.PatternFromRoot(root)
	if err != nil {
		return nil, err
	}
	node := &Node{Name: root}
	if err := scan(ctx, store, pattern, node, map[string]bool{}); err != nil {
		return nil, err
	}
	return node, nil
}

func scan(ctx context.Context, store fragment.Store, pattern fragment.Pattern, node *Node, active map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lines, err := fragment.ReadLines(store, node.Name, nil)
	if err != nil {
		return err
	}

	active[node.Name] = true
	defer delete(active, node.Name)

	for _, l := range skipHeader(lines) {
		ref, ok := parseRef(pattern, l)
		if !ok {
			continue
		}
		child := &Node{Name: pattern.Resolve(ref.Stem), Index: ref.Index}
		if active[child.Name] {
			return &fragment.Error{Kind: fragment.KindCycle, Target: child.Name, Text: node.Name}
		}
		if err := scan(ctx, store, pattern, child, active); err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}
	return nil
}

// Delete removes every fragment reachable from root, children before their
// parents. Root itself is left in place. Returns number of removed files.
func Delete(ctx context.Context, store fragment.Store, root string, log *zap.Logger) (int, error) {
	tree, err := Scan(ctx, store, root)
	if err != nil {
		return 0, err
	}
	removed := make(map[string]bool)
	err = removeChildren(store, tree, log, removed)
	return len(removed), err
}

// removeChildren deletes descendants of n. Fragment referenced more than once
// is deleted once.
func removeChildren(store fragment.Store, n *Node, log *zap.Logger, removed map[string]bool) error {
	for _, c := range n.Children {
		if removed[c.Name] {
			continue
		}
		if err := removeChildren(store, c, log, removed); err != nil {
			return err
		}
		if err := store.Remove(c.Name); err != nil {
			return fragment.IoFailed("delete", c.Name, err)
		}
		removed[c.Name] = true
		log.Debug("Fragment deleted", zap.String("file", c.Name))
	}
	return nil
}

// parseRef recognizes marker line referencing numbered fragment of pattern.
// Anything else, even if it looks like a marker, is an ordinary line.
func parseRef(pattern fragment.Pattern, l script.Line) (fragment.Ref, bool) {
	ref, ok := fragment.ParseMarker(l.Text)
	if !ok || !pattern.IsFragment(ref.Stem, ref.Index) {
		return fragment.Ref{}, false
	}
	return ref, true
}

func skipHeader(lines []script.Line) []script.Line {
	if len(lines) < fragment.HeaderLines {
		return nil
	}
	return lines[fragment.HeaderLines:]
}
