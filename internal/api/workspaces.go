package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/bundle"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/detect"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/events"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/logging"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/metrics"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/scan"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/vfs"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/protocol"
)

// workspace is a live editing session over one archive. The tree is mutable
// and serialized by the per-workspace mutex; the source archive record is
// never touched.
type workspace struct {
	id        string
	zipID     string
	createdAt time.Time

	mu   sync.Mutex
	tree *vfs.Tree
}

type workspaceManager struct {
	mu   sync.RWMutex
	byID map[string]*workspace
}

func newWorkspaceManager() *workspaceManager {
	return &workspaceManager{byID: make(map[string]*workspace)}
}

func (m *workspaceManager) create(zipID string, entries []models.ZipEntry) *workspace {
	ws := &workspace{
		id:        uuid.NewString(),
		zipID:     zipID,
		createdAt: time.Now(),
		tree:      vfs.Ingest(entries),
	}
	m.mu.Lock()
	m.byID[ws.id] = ws
	count := len(m.byID)
	m.mu.Unlock()
	metrics.SetWorkspacesActive(count)
	return ws
}

func (m *workspaceManager) get(id string) *workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id]
}

func (m *workspaceManager) delete(id string) bool {
	m.mu.Lock()
	_, ok := m.byID[id]
	delete(m.byID, id)
	count := len(m.byID)
	m.mu.Unlock()
	metrics.SetWorkspacesActive(count)
	return ok
}

func (m *workspaceManager) list() []*workspace {
	m.mu.RLock()
	out := make([]*workspace, 0, len(m.byID))
	for _, ws := range m.byID {
		out = append(out, ws)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].createdAt.Before(out[j].createdAt) })
	return out
}

// ─── Workspace lifecycle ────────────────────────────────────────────────────

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ZipID == "" {
		s.sendError(w, http.StatusBadRequest, "zipId required")
		return
	}

	z, err := s.store.Get(r.Context(), req.ZipID)
	if err != nil {
		s.sendError(w, http.StatusNotFound, "archive not found: "+req.ZipID)
		return
	}

	ws := s.workspaces.create(z.ID, z.Structure.Entries)
	logging.Info("workspace created",
		zap.String("id", ws.id),
		zap.String("zip_id", ws.zipID),
		zap.Int("files", ws.tree.FileCount()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(protocol.WorkspaceResponse{
		ID:        ws.id,
		ZipID:     ws.zipID,
		FileCount: ws.tree.FileCount(),
		CreatedAt: ws.createdAt,
	})
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	resp := []protocol.WorkspaceResponse{}
	for _, ws := range s.workspaces.list() {
		ws.mu.Lock()
		count := ws.tree.FileCount()
		ws.mu.Unlock()
		resp = append(resp, protocol.WorkspaceResponse{
			ID:        ws.id,
			ZipID:     ws.zipID,
			FileCount: count,
			CreatedAt: ws.createdAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.workspaces.delete(id) {
		s.sendError(w, http.StatusNotFound, "workspace not found: "+id)
		return
	}
	logging.Info("workspace deleted", zap.String("id", id))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "deleted": true})
}

// loadWorkspace resolves the {id} path value, writing the error response
// itself on failure.
func (s *Server) loadWorkspace(w http.ResponseWriter, r *http.Request) (*workspace, bool) {
	id := r.PathValue("id")
	ws := s.workspaces.get(id)
	if ws == nil {
		s.sendError(w, http.StatusNotFound, "workspace not found: "+id)
		return nil, false
	}
	return ws, true
}

// ─── Tree and files ─────────────────────────────────────────────────────────

func (s *Server) handleWorkspaceTree(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	s.writeJSON(w, r, protocol.TreeResponse{Root: ws.tree.Root()})
}

func (s *Server) handleWorkspaceGetFile(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	path := r.PathValue("path")

	ws.mu.Lock()
	node := ws.tree.Find(path)
	if node == nil || node.IsDir {
		ws.mu.Unlock()
		s.sendError(w, http.StatusNotFound, "file not found: "+path)
		return
	}
	content := node.Content
	ws.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, content)
}

func (s *Server) handleWorkspaceSaveFile(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	path := r.PathValue("path")
	if path == "" {
		s.sendError(w, http.StatusBadRequest, "file path required")
		return
	}

	content, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxUploadSize+1))
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to read content")
		return
	}
	if int64(len(content)) > s.config.MaxUploadSize {
		s.sendError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large: max %d bytes", s.config.MaxUploadSize))
		return
	}

	ws.mu.Lock()
	node := ws.tree.SaveFile(path, string(content))
	ws.mu.Unlock()

	s.publishEvent(events.EventFileSaved, ws.zipID, node.Path, 0)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.SaveFileResponse{
		Path: node.Path,
		Size: len(content),
	})
}

// ─── Editing operations ─────────────────────────────────────────────────────

func (s *Server) handleWorkspaceInject(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}

	var req protocol.InjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Position != vfs.PositionStart && req.Position != vfs.PositionEnd {
		s.sendError(w, http.StatusBadRequest, `position must be "start" or "end"`)
		return
	}

	ws.mu.Lock()
	injected := ws.tree.InjectCode(req.Path, req.Snippet, req.Position)
	ws.mu.Unlock()

	if !injected {
		s.sendError(w, http.StatusNotFound, "file not found: "+req.Path)
		return
	}

	s.publishEvent(events.EventFileSaved, ws.zipID, req.Path, 0)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"path": req.Path, "injected": true})
}

func (s *Server) handleWorkspaceReplace(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}

	var req protocol.ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Pattern == "" {
		s.sendError(w, http.StatusBadRequest, "pattern required")
		return
	}

	ws.mu.Lock()
	replaced := ws.tree.ReplaceCode(req.Path, req.Pattern, req.Replacement)
	ws.mu.Unlock()

	if !replaced {
		s.sendError(w, http.StatusNotFound, "file or pattern not found: "+req.Path)
		return
	}

	s.publishEvent(events.EventFileSaved, ws.zipID, req.Path, 0)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"path": req.Path, "replaced": true})
}

func (s *Server) handleWorkspaceSearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.sendError(w, http.StatusBadRequest, "query parameter q required")
		return
	}

	ws.mu.Lock()
	hits := ws.tree.SearchCode(query)
	ws.mu.Unlock()

	if hits == nil {
		hits = []models.SearchHit{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.SearchResponse{Query: query, Results: hits})
}

func (s *Server) handleWorkspaceAnalyze(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	path := r.PathValue("path")

	ws.mu.Lock()
	stats, found := ws.tree.AnalyzeCode(path)
	ws.mu.Unlock()

	if !found {
		s.sendError(w, http.StatusNotFound, "file not found: "+path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.AnalyzeResponse{File: path, FileStats: stats})
}

// ─── Analysis over live state ───────────────────────────────────────────────
//
// These run against the workspace's current entries, not the source archive,
// so unsaved edits are reflected. No bundle caching here: the tree mutates.

func (s *Server) handleWorkspaceEntryPoint(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	ws.mu.Lock()
	entries := ws.tree.Entries()
	ws.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.EntryPointResponse{EntryPoint: detect.Detect(entries)})
}

func (s *Server) handleWorkspaceIssues(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	ws.mu.Lock()
	entries := ws.tree.Entries()
	ws.mu.Unlock()

	issues := scan.Analyze(entries)
	for _, issue := range issues {
		metrics.RecordScannerIssue(issue.Severity)
	}
	if issues == nil {
		issues = []models.CodeIssue{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.IssuesResponse{Issues: issues})
}

func (s *Server) handleWorkspaceBundle(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorkspace(w, r)
	if !ok {
		return
	}
	ws.mu.Lock()
	entries := ws.tree.Entries()
	ws.mu.Unlock()

	start := time.Now()
	html := bundle.Bundle(entries, detect.Detect(entries))
	metrics.RecordBundle(time.Since(start))

	s.writeBundle(w, html)
}
