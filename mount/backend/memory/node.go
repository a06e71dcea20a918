package memory

import (
	"bytes"
	"io/fs"
	"path"

	"github.com/tidwall/btree"
)

// Node is a file or directory of an immutable memory tree.
type Node struct {
	content  []byte
	children *btree.Map[string, *Node]
}

// File returns a file node holding a copy of content.
func File(content []byte) *Node {
	return &Node{content: bytes.Clone(content)}
}

// Text returns a file node holding s.
func Text(s string) *Node {
	return &Node{content: []byte(s)}
}

// Dir returns a directory node with the given children.
func Dir(children map[string]*Node) *Node {
	tree := btree.NewMap[string, *Node](0)
	for name, child := range children {
		if name == "" || child == nil {
			continue
		}
		tree.Set(name, child)
	}

	return &Node{children: tree}
}

// FromFS snapshots the tree below dir of fsys.
func FromFS(fsys fs.FS, dir string) (*Node, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	children := make(map[string]*Node, len(entries))
	for _, entry := range entries {
		name := path.Join(dir, entry.Name())
		if entry.IsDir() {
			child, err := FromFS(fsys, name)
			if err != nil {
				return nil, err
			}
			children[entry.Name()] = child
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		children[entry.Name()] = &Node{content: content}
	}

	return Dir(children), nil
}

func (n *Node) IsDir() bool {
	return n.children != nil
}

// Size returns the content length of a file node, 0 for directories.
func (n *Node) Size() int64 {
	return int64(len(n.content))
}

// Names returns the sorted child names of a directory node.
func (n *Node) Names() []string {
	if n.children == nil {
		return nil
	}
	return n.children.Keys()
}

func (n *Node) child(name string) (*Node, bool) {
	if n.children == nil {
		return nil, false
	}
	return n.children.Get(name)
}
