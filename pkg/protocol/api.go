// Package protocol defines the API request/response types.
package protocol

import (
	"time"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

// ErrorResponse is returned on API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

// ─── Auth ───────────────────────────────────────────────────────────────────

// TokenRequest is the body for POST /api/auth/token.
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ─── Archives ───────────────────────────────────────────────────────────────

// UploadURLResponse is returned by POST /api/zips/upload-url.
type UploadURLResponse struct {
	UploadURL  string `json:"uploadURL"`
	ObjectPath string `json:"objectPath"`
}

// CreateZipRequest is the body for POST /api/zips.
type CreateZipRequest struct {
	Filename   string `json:"filename"`
	ObjectPath string `json:"objectPath"`
	Size       int64  `json:"size"`
}

// ZipRef identifies a stored archive along with its retained file count.
type ZipRef struct {
	ID        string `json:"id"`
	FileCount int    `json:"fileCount"`
}

// ZipSummary is a list entry for GET /api/zips.
type ZipSummary struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	FileCount    int       `json:"file_count"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// ZipListResponse is returned by GET /api/zips.
type ZipListResponse struct {
	Zips []ZipSummary `json:"zips"`
}

// ModifyRequest is the body for POST /api/zips/{id}/modify.
type ModifyRequest struct {
	DeletedPaths []string            `json:"deletedPaths"`
	RenamedPaths []models.RenamePair `json:"renamedPaths"`
}

// MergeRequest is the body for POST /api/zips/merge.
type MergeRequest struct {
	ZipIDs              []string          `json:"zipIds"`
	ConflictResolutions map[string]string `json:"conflictResolutions"`
}

// MergeResponse is returned by POST /api/zips/merge.
type MergeResponse struct {
	ID        string `json:"id"`
	FileCount int    `json:"fileCount"`
}

// EntryPointResponse wraps a detection result. EntryPoint is null when the
// archive is not runnable — a normal outcome, not an error.
type EntryPointResponse struct {
	EntryPoint *models.EntryPoint `json:"entry_point"`
}

// IssuesResponse is returned by the issue-scan endpoints.
type IssuesResponse struct {
	Issues []models.CodeIssue `json:"issues"`
}

// ─── Workspaces ─────────────────────────────────────────────────────────────

// CreateWorkspaceRequest is the body for POST /api/workspaces.
type CreateWorkspaceRequest struct {
	ZipID string `json:"zipId"`
}

// WorkspaceResponse describes an editing session.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	ZipID     string    `json:"zip_id"`
	FileCount int       `json:"file_count"`
	CreatedAt time.Time `json:"created_at"`
}

// TreeResponse is returned by GET /api/workspaces/{id}/tree.
type TreeResponse struct {
	Root *models.FileNode `json:"root"`
}

// InjectRequest is the body for POST /api/workspaces/{id}/inject.
// Position is "start" or "end".
type InjectRequest struct {
	Path     string `json:"path"`
	Snippet  string `json:"snippet"`
	Position string `json:"position"`
}

// ReplaceRequest is the body for POST /api/workspaces/{id}/replace.
type ReplaceRequest struct {
	Path        string `json:"path"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// SearchResponse is returned by GET /api/workspaces/{id}/search.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []models.SearchHit `json:"results"`
}

// AnalyzeResponse is returned by GET /api/workspaces/{id}/analyze/{path}.
type AnalyzeResponse struct {
	File string `json:"file"`
	models.FileStats
}

// SaveFileResponse is returned after a workspace file write.
type SaveFileResponse struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}
