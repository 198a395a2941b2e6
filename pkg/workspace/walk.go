package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"marginalia/pkg/logger"
	"marginalia/pkg/models"
	"marginalia/pkg/notes"
)

// walk builds the FileNode tree and its path arena for root. Entries
// matched by the workspace's .gitignore are skipped, as are dotfiles (which
// hides the VCS directory and the note document itself).
func walk(root string) (*models.FileNode, map[string]*models.FileNode, error) {
	var ign *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		ign = gi
	}

	top := &models.FileNode{ID: "", Name: filepath.Base(root), IsFolder: true}
	nodes := map[string]*models.FileNode{}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("workspace_walk_error", "path", path, "error", err)
			return nil
		}
		if path == root {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(d.Name(), ".") || d.Name() == notes.DocumentName {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ign != nil && ign.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		n := &models.FileNode{
			ID:       rel,
			Name:     d.Name(),
			IsFolder: d.IsDir(),
		}
		if !n.IsFolder {
			n.Language = languageFor(n.Name)
		}
		nodes[rel] = n

		parent := top
		if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
			if p, ok := nodes[dir]; ok {
				parent = p
			}
		}
		parent.Children = append(parent.Children, n)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sortChildren(top)
	return top, nodes, nil
}

// sortChildren orders each folder's children folders-first, then by name.
func sortChildren(n *models.FileNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsFolder != b.IsFolder {
			return a.IsFolder
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		if c.IsFolder {
			sortChildren(c)
		}
	}
}
