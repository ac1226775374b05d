// Package models contains shared data types used across the server, client,
// and CLI.
package models

import "time"

// ZipEntry is the flat, wire-level representation of a single archive member.
// Hierarchy is not encoded here; it is reconstructed by splitting Name on "/".
type ZipEntry struct {
	Name     string `json:"name"`
	IsFolder bool   `json:"is_folder"`
	Content  string `json:"content,omitempty"`
}

// FileNode represents a file or folder in the virtual file tree.
// Exactly one node exists per path; folders never hold Content and files
// never hold Children.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	IsDir    bool        `json:"is_dir"`
	Content  string      `json:"content,omitempty"`
	Children []*FileNode `json:"children,omitempty"`
}

// Entry point types.
const (
	EntryHTML       = "html"
	EntryJavaScript = "javascript"
	EntryPython     = "python"
	EntryUnknown    = "unknown"
)

// EntryPoint is the detector's best guess at a project's runnable main.
type EntryPoint struct {
	File       string  `json:"file"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// CodeIssue is a single heuristic finding for a file. Line is zero when the
// check works at file granularity.
type CodeIssue struct {
	File       string `json:"file"`
	Line       int    `json:"line,omitempty"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ZipStructure holds the ordered entries of a stored archive plus the file
// count (folders excluded).
type ZipStructure struct {
	Entries   []ZipEntry `json:"entries"`
	FileCount int        `json:"file_count"`
}

// ZipAnalysis is the informational summary attached to a stored archive.
type ZipAnalysis struct {
	Description string `json:"description"`
}

// StoredZip is the persisted archive record. Archives are immutable: modify
// and merge operations produce a new StoredZip with a new ID.
type StoredZip struct {
	ID           string       `json:"id"`
	OriginalName string       `json:"original_name"`
	ObjectPath   string       `json:"object_path,omitempty"`
	Size         int64        `json:"size"`
	Structure    ZipStructure `json:"structure"`
	Analysis     ZipAnalysis  `json:"analysis"`
	CreatedAt    time.Time    `json:"created_at"`
}

// FileStats is the result of analyzing a single file in a workspace.
// HasComments and HasFunctions are substring heuristics, not a parse.
type FileStats struct {
	Language     string `json:"language"`
	Lines        int    `json:"lines"`
	Characters   int    `json:"characters"`
	IsEmpty      bool   `json:"is_empty"`
	HasComments  bool   `json:"has_comments"`
	HasFunctions bool   `json:"has_functions"`
}

// SearchMatch is a single occurrence of a search query. Line and Column are
// 1-based; Text is the full matching line.
type SearchMatch struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// SearchHit groups the matches found in one file.
type SearchHit struct {
	File    string        `json:"file"`
	Matches []SearchMatch `json:"matches"`
}

// RenamePair maps an original archive path to its new path.
type RenamePair struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// Merge conflict strategies.
const (
	MergeFirst  = "first"
	MergeLast   = "last"
	MergeRename = "rename"
)
