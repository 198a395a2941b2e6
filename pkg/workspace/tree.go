// Package workspace owns the opened directory: a file tree addressed by
// relative path, a gitignore-aware walker that builds it, and a watcher
// that rebuilds it when the directory changes.
//
// The tree is kept as an arena (map from path to node) rather than a
// recursively copied structure, so lookups and rebuilds are cheap and node
// identity matches the FileID annotations join on.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"marginalia/pkg/logger"
	"marginalia/pkg/models"
)

// Tree is the workspace file-tree arena.
type Tree struct {
	root string

	mu    sync.RWMutex
	nodes map[string]*models.FileNode
	top   *models.FileNode
}

// Open walks root and returns the populated tree.
func Open(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot open workspace %s: %w", root, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", root)
	}
	t := &Tree{root: abs}
	if err := t.Rebuild(); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the workspace root path.
func (t *Tree) Root() string { return t.root }

// Top returns the root folder node of the current tree.
func (t *Tree) Top() *models.FileNode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.top
}

// Node returns the node with the given id (relative path), or nil.
func (t *Tree) Node(id string) *models.FileNode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes[id]
}

// Has reports whether a file or folder with the given id exists.
func (t *Tree) Has(id string) bool {
	return t.Node(id) != nil
}

// Content returns a file's text, loading it lazily on first access and
// caching it on the node until the next rebuild.
func (t *Tree) Content(id string) (string, error) {
	t.mu.RLock()
	n := t.nodes[id]
	t.mu.RUnlock()
	if n == nil {
		return "", fmt.Errorf("no such file: %s", id)
	}
	if n.IsFolder {
		return "", fmt.Errorf("%s is a folder", id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n.Content != "" {
		return n.Content, nil
	}
	b, err := os.ReadFile(filepath.Join(t.root, filepath.FromSlash(id)))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", id, err)
	}
	n.Content = string(b)
	return n.Content, nil
}

// Rebuild re-walks the directory and swaps in a fresh arena. Cached file
// contents are dropped; they reload lazily.
func (t *Tree) Rebuild() error {
	top, nodes, err := walk(t.root)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.top = top
	t.nodes = nodes
	t.mu.Unlock()
	logger.Info("workspace_tree_built", "root", t.root, "nodes", len(nodes))
	return nil
}
