// Package vfs provides the in-memory virtual file tree reconstructed from a
// flat archive entry list. A Tree lives for the duration of one editing
// session and is never shared between writers.
package vfs

import (
	"path"
	"strings"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

// Injection positions for InjectCode.
const (
	PositionStart = "start"
	PositionEnd   = "end"
)

// Tree is a hierarchical view over flat archive entries. Node paths are
// archive-relative (no leading slash); the root is a virtual folder.
type Tree struct {
	root  *models.FileNode
	index map[string]*models.FileNode
}

// Ingest builds a tree from flat archive entries. Intermediate folders are
// created as needed, empty folder entries are preserved, and duplicate paths
// resolve last-write-wins.
func Ingest(entries []models.ZipEntry) *Tree {
	t := &Tree{
		root:  &models.FileNode{Name: "/", Path: "", IsDir: true},
		index: make(map[string]*models.FileNode),
	}
	for _, e := range entries {
		name := strings.Trim(e.Name, "/")
		if name == "" {
			continue
		}
		if e.IsFolder {
			t.ensureFolder(name)
			continue
		}
		t.upsertFile(name, e.Content)
	}
	return t
}

// Root returns the virtual root folder.
func (t *Tree) Root() *models.FileNode {
	return t.root
}

// Find resolves a path to its node, or nil.
func (t *Tree) Find(p string) *models.FileNode {
	return t.index[strings.Trim(p, "/")]
}

// Paths returns every node path in depth-first order (root excluded).
func (t *Tree) Paths() []string {
	var out []string
	var walk func(n *models.FileNode)
	walk = func(n *models.FileNode) {
		for _, child := range n.Children {
			out = append(out, child.Path)
			walk(child)
		}
	}
	walk(t.root)
	return out
}

// Entries flattens the tree back to the wire shape, folders first along each
// branch, so the detector, scanner, and bundler can run against live state.
func (t *Tree) Entries() []models.ZipEntry {
	var out []models.ZipEntry
	var walk func(n *models.FileNode)
	walk = func(n *models.FileNode) {
		for _, child := range n.Children {
			if child.IsDir {
				out = append(out, models.ZipEntry{Name: child.Path, IsFolder: true})
				walk(child)
				continue
			}
			out = append(out, models.ZipEntry{Name: child.Path, Content: child.Content})
		}
	}
	walk(t.root)
	return out
}

// FileCount returns the number of file nodes.
func (t *Tree) FileCount() int {
	count := 0
	for _, n := range t.index {
		if !n.IsDir {
			count++
		}
	}
	return count
}

// ensureFolder returns the folder node at p, creating it and any missing
// ancestors. An existing file node at p is converted (last-write-wins).
func (t *Tree) ensureFolder(p string) *models.FileNode {
	if p == "" {
		return t.root
	}
	if n, ok := t.index[p]; ok {
		if !n.IsDir {
			n.IsDir = true
			n.Content = ""
		}
		return n
	}
	parent := t.ensureFolder(parentPath(p))
	n := &models.FileNode{
		Name:  path.Base(p),
		Path:  p,
		IsDir: true,
	}
	parent.Children = append(parent.Children, n)
	t.index[p] = n
	return n
}

// upsertFile creates or overwrites the file node at p.
func (t *Tree) upsertFile(p, content string) *models.FileNode {
	if n, ok := t.index[p]; ok {
		// Last write wins; a folder colliding with a file is replaced.
		n.IsDir = false
		n.Children = nil
		n.Content = content
		return n
	}
	parent := t.ensureFolder(parentPath(p))
	n := &models.FileNode{
		Name:    path.Base(p),
		Path:    p,
		Content: content,
	}
	parent.Children = append(parent.Children, n)
	t.index[p] = n
	return n
}

func parentPath(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// CreateFile creates an empty file under dir. Passing an empty dir creates
// the file at the archive root.
func (t *Tree) CreateFile(dir, name string) *models.FileNode {
	dir = strings.Trim(dir, "/")
	p := name
	if dir != "" {
		p = dir + "/" + name
	}
	return t.upsertFile(p, "")
}

// SaveFile upserts content at path, auto-creating missing folders.
func (t *Tree) SaveFile(p, content string) *models.FileNode {
	return t.upsertFile(strings.Trim(p, "/"), content)
}

// InjectCode concatenates snippet at the requested edge of the file at p.
// Returns false if p does not resolve to a file. Not idempotent: injecting
// twice appends twice.
func (t *Tree) InjectCode(p, snippet, position string) bool {
	n := t.Find(p)
	if n == nil || n.IsDir {
		return false
	}
	if position == PositionStart {
		n.Content = snippet + n.Content
	} else {
		n.Content = n.Content + snippet
	}
	return true
}

// ReplaceCode replaces the first literal occurrence of pattern in the file at
// p. Returns false if p is missing or pattern is absent; the tree is left
// unchanged on failure.
func (t *Tree) ReplaceCode(p, pattern, replacement string) bool {
	n := t.Find(p)
	if n == nil || n.IsDir {
		return false
	}
	if !strings.Contains(n.Content, pattern) {
		return false
	}
	n.Content = strings.Replace(n.Content, pattern, replacement, 1)
	return true
}

// SearchCode scans every file line-by-line for literal occurrences of query.
// Line and column are 1-based; files without matches are omitted.
func (t *Tree) SearchCode(query string) []models.SearchHit {
	if query == "" {
		return nil
	}
	var hits []models.SearchHit
	var walk func(n *models.FileNode)
	walk = func(n *models.FileNode) {
		for _, child := range n.Children {
			if child.IsDir {
				walk(child)
				continue
			}
			matches := searchLines(child.Content, query)
			if len(matches) > 0 {
				hits = append(hits, models.SearchHit{File: child.Path, Matches: matches})
			}
		}
	}
	walk(t.root)
	return hits
}

func searchLines(content, query string) []models.SearchMatch {
	var matches []models.SearchMatch
	for i, line := range strings.Split(content, "\n") {
		col := 0
		for {
			idx := strings.Index(line[col:], query)
			if idx < 0 {
				break
			}
			col += idx
			matches = append(matches, models.SearchMatch{
				Line:   i + 1,
				Column: col + 1,
				Text:   line,
			})
			col += len(query)
			if col >= len(line) {
				break
			}
		}
	}
	return matches
}

// AnalyzeCode reports heuristic stats for the file at p. The second return
// value is false when p does not resolve to a file.
func (t *Tree) AnalyzeCode(p string) (models.FileStats, bool) {
	n := t.Find(p)
	if n == nil || n.IsDir {
		return models.FileStats{}, false
	}
	content := n.Content
	lang := languageOf(n.Name)
	return models.FileStats{
		Language:     lang,
		Lines:        len(strings.Split(content, "\n")),
		Characters:   len(content),
		IsEmpty:      strings.TrimSpace(content) == "",
		HasComments:  hasComments(content, lang),
		HasFunctions: hasFunctions(content),
	}, true
}

func languageOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".js", ".mjs":
		return "javascript"
	case ".html", ".htm":
		return "html"
	case ".css":
		return "css"
	case ".py":
		return "python"
	case ".json":
		return "json"
	case ".md":
		return "markdown"
	case ".txt", "":
		return "text"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// hasComments is a substring heuristic, not a parse.
func hasComments(content, lang string) bool {
	if lang == "python" && strings.Contains(content, "#") {
		return true
	}
	return strings.Contains(content, "//") ||
		strings.Contains(content, "/*") ||
		strings.Contains(content, "<!--")
}

// hasFunctions is a substring heuristic, not a parse.
func hasFunctions(content string) bool {
	return strings.Contains(content, "function") ||
		strings.Contains(content, "=>") ||
		strings.Contains(content, "def ")
}
