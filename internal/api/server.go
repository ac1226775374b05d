// Package api provides the HTTP server and handlers.
package api

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/archive"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/auth"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/bundle"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/config"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/detect"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/events"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/logging"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/metrics"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/scan"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/storage"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/protocol"
)

// Bundles are rendered inside a sandboxed context restricted to script
// execution and form submission.
const bundleSandboxCSP = "sandbox allow-scripts allow-forms"

const presignTTL = 15 * time.Minute

// Pool gzip writers to reduce allocations on tree/archive endpoints.
var gzipPool = sync.Pool{
	New: func() any { return gzip.NewWriter(nil) },
}

// Server is the HTTP server.
type Server struct {
	store       archive.Store
	backend     storage.Backend
	auth        *auth.Auth
	broadcaster *events.Broadcaster
	config      *config.Config
	workspaces  *workspaceManager

	// Stored archives are immutable, so bundles are cached by archive ID.
	bundleCache *lru.Cache[string, string]

	// Object paths handed out by upload-url, single-use, expire like presigns.
	uploadGrants   map[string]time.Time
	uploadGrantsMu sync.Mutex
}

// NewServer creates a new server.
func NewServer(
	store archive.Store,
	backend storage.Backend,
	authHandler *auth.Auth,
	broadcaster *events.Broadcaster,
	cfg *config.Config,
) *Server {
	cache, _ := lru.New[string, string](128)
	return &Server{
		store:        store,
		backend:      backend,
		auth:         authHandler,
		broadcaster:  broadcaster,
		config:       cfg,
		workspaces:   newWorkspaceManager(),
		bundleCache:  cache,
		uploadGrants: make(map[string]time.Time),
	}
}

// Handler returns the HTTP handler with auth and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/token", s.auth.HandleLogin)

	// Direct upload sink for the local backend. Accepts only object paths
	// handed out by the protected upload-url endpoint; each grant is
	// single-use and expires with the presign TTL.
	mux.HandleFunc("PUT /api/zips/upload/{object...}", s.handleDirectUpload)

	// Protected endpoints
	protected := http.NewServeMux()

	// Archive endpoints
	protected.HandleFunc("POST /api/zips/upload-url", s.handleUploadURL)
	protected.HandleFunc("POST /api/zips", s.handleCreateZip)
	protected.HandleFunc("GET /api/zips", s.handleListZips)
	protected.HandleFunc("GET /api/zips/{id}", s.handleGetZip)
	protected.HandleFunc("DELETE /api/zips/{id}", s.handleDeleteZip)
	protected.HandleFunc("GET /api/zips/{id}/download", s.handleDownloadZip)
	protected.HandleFunc("GET /api/zips/{id}/file/{path...}", s.handleGetZipFile)
	protected.HandleFunc("POST /api/zips/{id}/modify", s.handleModifyZip)
	protected.HandleFunc("POST /api/zips/merge", s.handleMergeZips)
	protected.HandleFunc("GET /api/zips/{id}/entrypoint", s.handleZipEntryPoint)
	protected.HandleFunc("GET /api/zips/{id}/issues", s.handleZipIssues)
	protected.HandleFunc("GET /api/zips/{id}/bundle", s.handleZipBundle)

	// Workspace endpoints
	protected.HandleFunc("POST /api/workspaces", s.handleCreateWorkspace)
	protected.HandleFunc("GET /api/workspaces", s.handleListWorkspaces)
	protected.HandleFunc("DELETE /api/workspaces/{id}", s.handleDeleteWorkspace)
	protected.HandleFunc("GET /api/workspaces/{id}/tree", s.handleWorkspaceTree)
	protected.HandleFunc("GET /api/workspaces/{id}/file/{path...}", s.handleWorkspaceGetFile)
	protected.HandleFunc("PUT /api/workspaces/{id}/file/{path...}", s.handleWorkspaceSaveFile)
	protected.HandleFunc("POST /api/workspaces/{id}/inject", s.handleWorkspaceInject)
	protected.HandleFunc("POST /api/workspaces/{id}/replace", s.handleWorkspaceReplace)
	protected.HandleFunc("GET /api/workspaces/{id}/search", s.handleWorkspaceSearch)
	protected.HandleFunc("GET /api/workspaces/{id}/analyze/{path...}", s.handleWorkspaceAnalyze)
	protected.HandleFunc("GET /api/workspaces/{id}/entrypoint", s.handleWorkspaceEntryPoint)
	protected.HandleFunc("GET /api/workspaces/{id}/issues", s.handleWorkspaceIssues)
	protected.HandleFunc("GET /api/workspaces/{id}/bundle", s.handleWorkspaceBundle)

	// SSE endpoint
	protected.HandleFunc("GET /api/events", s.handleEvents)

	mux.Handle("/api/", s.auth.Middleware(protected))

	// Apply logging and metrics middleware
	return metrics.Middleware(logging.Middleware(mux))
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"storage": s.backend.Type(),
	})
}

// ─── SSE Events ─────────────────────────────────────────────────────────────

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := events.MarshalEvent(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

func (s *Server) publishEvent(eventType, zipID, path string, fileCount int) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(events.Event{
		Type:      eventType,
		ZipID:     zipID,
		Path:      path,
		FileCount: fileCount,
	})
}

// ─── Upload ─────────────────────────────────────────────────────────────────

// validObjectPath reports whether p has the exact shape handed out by
// upload-url: uploads/<uuid>.zip. Everything else, dot segments included,
// is rejected before it can reach a storage backend.
func validObjectPath(p string) bool {
	rest, ok := strings.CutPrefix(p, "uploads/")
	if !ok {
		return false
	}
	id, ok := strings.CutSuffix(rest, ".zip")
	if !ok {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// grantUpload records an object path as an accepted upload target.
func (s *Server) grantUpload(objectPath string) {
	now := time.Now()
	s.uploadGrantsMu.Lock()
	defer s.uploadGrantsMu.Unlock()
	for p, deadline := range s.uploadGrants {
		if now.After(deadline) {
			delete(s.uploadGrants, p)
		}
	}
	s.uploadGrants[objectPath] = now.Add(presignTTL)
}

// consumeUploadGrant redeems a granted object path. Grants are single-use.
func (s *Server) consumeUploadGrant(objectPath string) bool {
	s.uploadGrantsMu.Lock()
	defer s.uploadGrantsMu.Unlock()
	deadline, ok := s.uploadGrants[objectPath]
	if !ok {
		return false
	}
	delete(s.uploadGrants, objectPath)
	return time.Now().Before(deadline)
}

func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	objectPath := "uploads/" + uuid.NewString() + ".zip"

	var uploadURL string
	if p, ok := s.backend.(storage.Presigner); ok {
		url, err := p.PresignPut(r.Context(), objectPath, presignTTL)
		if err != nil {
			logging.Error("presign upload URL", zap.Error(err))
			s.sendError(w, http.StatusInternalServerError, "failed to create upload URL")
			return
		}
		uploadURL = url
	} else {
		s.grantUpload(objectPath)
		uploadURL = s.config.PublicBaseURL + "/api/zips/upload/" + objectPath
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.UploadURLResponse{
		UploadURL:  uploadURL,
		ObjectPath: objectPath,
	})
}

func (s *Server) handleDirectUpload(w http.ResponseWriter, r *http.Request) {
	objectPath := r.PathValue("object")
	if !validObjectPath(objectPath) || !s.consumeUploadGrant(objectPath) {
		s.sendError(w, http.StatusForbidden, "invalid upload path")
		return
	}

	if r.ContentLength > s.config.MaxUploadSize {
		s.sendError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large: max %d bytes", s.config.MaxUploadSize))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxUploadSize+1))
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if int64(len(body)) > s.config.MaxUploadSize {
		s.sendError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large: max %d bytes", s.config.MaxUploadSize))
		return
	}

	if err := s.backend.PutObject(r.Context(), objectPath, strings.NewReader(string(body)), int64(len(body))); err != nil {
		logging.Error("store upload", zap.String("object", objectPath), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"objectPath": objectPath,
		"size":       len(body),
	})
}

// ─── Archives ───────────────────────────────────────────────────────────────

func (s *Server) handleCreateZip(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateZipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" || req.ObjectPath == "" {
		s.sendError(w, http.StatusBadRequest, "filename and objectPath required")
		return
	}
	if !validObjectPath(req.ObjectPath) {
		s.sendError(w, http.StatusBadRequest, "invalid objectPath")
		return
	}

	reader, _, err := s.backend.GetObject(r.Context(), req.ObjectPath)
	if err != nil {
		metrics.RecordArchiveIngest(0, false)
		s.sendError(w, http.StatusNotFound, "uploaded object not found: "+req.ObjectPath)
		return
	}
	data, err := io.ReadAll(io.LimitReader(reader, s.config.MaxUploadSize+1))
	reader.Close()
	if err != nil {
		metrics.RecordArchiveIngest(0, false)
		s.sendError(w, http.StatusInternalServerError, "failed to read object")
		return
	}

	entries, err := archive.Decode(data)
	if err != nil {
		metrics.RecordArchiveIngest(0, false)
		s.sendError(w, http.StatusUnprocessableEntity, "invalid ZIP archive: "+err.Error())
		return
	}

	ep := detect.Detect(entries)
	z := &models.StoredZip{
		ID:           uuid.NewString(),
		OriginalName: req.Filename,
		ObjectPath:   req.ObjectPath,
		Size:         int64(len(data)),
		Structure: models.ZipStructure{
			Entries:   entries,
			FileCount: archive.FileCount(entries),
		},
		Analysis:  models.ZipAnalysis{Description: archive.Describe(entries, ep)},
		CreatedAt: time.Now(),
	}

	if err := s.store.Create(r.Context(), z); err != nil {
		metrics.RecordArchiveIngest(0, false)
		logging.Error("store archive", zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to store archive")
		return
	}

	metrics.RecordArchiveIngest(len(entries), true)
	logging.Info("archive ingested",
		zap.String("id", z.ID),
		zap.String("name", z.OriginalName),
		zap.Int("entries", len(entries)),
		zap.Int("files", z.Structure.FileCount))
	s.publishEvent(events.EventArchiveIngested, z.ID, "", z.Structure.FileCount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(protocol.ZipRef{ID: z.ID, FileCount: z.Structure.FileCount})
}

func (s *Server) handleListZips(w http.ResponseWriter, r *http.Request) {
	zips, err := s.store.List(r.Context())
	if err != nil {
		logging.Error("list archives", zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}

	resp := protocol.ZipListResponse{Zips: []protocol.ZipSummary{}}
	for _, z := range zips {
		resp.Zips = append(resp.Zips, protocol.ZipSummary{
			ID:           z.ID,
			OriginalName: z.OriginalName,
			Size:         z.Size,
			FileCount:    z.Structure.FileCount,
			Description:  z.Analysis.Description,
			CreatedAt:    z.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleGetZip(w http.ResponseWriter, r *http.Request) {
	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, z)
}

func (s *Server) handleDeleteZip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, archive.ErrNotFound) {
		s.sendError(w, http.StatusNotFound, "archive not found: "+id)
		return
	}
	if err != nil {
		logging.Error("delete archive", zap.String("id", id), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to delete archive")
		return
	}

	s.bundleCache.Remove(id)
	logging.Info("archive deleted", zap.String("id", id))
	s.publishEvent(events.EventArchiveDeleted, id, "", 0)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}

	data, err := archive.Encode(z.Structure.Entries)
	if err != nil {
		logging.Error("encode archive", zap.String("id", z.ID), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to encode archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+z.OriginalName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleGetZipFile(w http.ResponseWriter, r *http.Request) {
	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}
	path := r.PathValue("path")

	for _, e := range z.Structure.Entries {
		if e.IsFolder || e.Name != path {
			continue
		}
		ct := mime.TypeByExtension(filepath.Ext(path))
		if ct == "" {
			ct = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		io.WriteString(w, e.Content)
		return
	}

	s.sendError(w, http.StatusNotFound, "file not found in archive: "+path)
}

// ─── Modify / Merge ─────────────────────────────────────────────────────────

func (s *Server) handleModifyZip(w http.ResponseWriter, r *http.Request) {
	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}

	var req protocol.ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordArchiveModify(false)
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entries := archive.Apply(z.Structure.Entries, req.DeletedPaths, req.RenamedPaths)
	derived := s.deriveZip(z.OriginalName, entries)

	if err := s.store.Create(r.Context(), derived); err != nil {
		metrics.RecordArchiveModify(false)
		logging.Error("store modified archive", zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to store modified archive")
		return
	}

	metrics.RecordArchiveModify(true)
	logging.Info("archive modified",
		zap.String("source", z.ID),
		zap.String("id", derived.ID),
		zap.Int("deleted", len(req.DeletedPaths)),
		zap.Int("renamed", len(req.RenamedPaths)))
	s.publishEvent(events.EventArchiveModified, derived.ID, "", derived.Structure.FileCount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(protocol.ZipRef{ID: derived.ID, FileCount: derived.Structure.FileCount})
}

func (s *Server) handleMergeZips(w http.ResponseWriter, r *http.Request) {
	var req protocol.MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordArchiveMerge(false)
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ZipIDs) < 2 {
		metrics.RecordArchiveMerge(false)
		s.sendError(w, http.StatusBadRequest, "at least two zipIds required")
		return
	}

	archives := make([][]models.ZipEntry, 0, len(req.ZipIDs))
	names := make([]string, 0, len(req.ZipIDs))
	for _, id := range req.ZipIDs {
		z, err := s.store.Get(r.Context(), id)
		if errors.Is(err, archive.ErrNotFound) {
			metrics.RecordArchiveMerge(false)
			s.sendError(w, http.StatusNotFound, "archive not found: "+id)
			return
		}
		if err != nil {
			metrics.RecordArchiveMerge(false)
			logging.Error("load archive for merge", zap.String("id", id), zap.Error(err))
			s.sendError(w, http.StatusInternalServerError, "failed to load archive")
			return
		}
		archives = append(archives, z.Structure.Entries)
		names = append(names, z.OriginalName)
	}

	merged, err := archive.Merge(archives, req.ConflictResolutions)
	var conflict *archive.ConflictError
	if errors.As(err, &conflict) {
		metrics.RecordArchiveMerge(false)
		s.sendErrorDetails(w, http.StatusUnprocessableEntity,
			"unresolved merge conflicts", strings.Join(conflict.Paths, ", "))
		return
	}
	if err != nil {
		metrics.RecordArchiveMerge(false)
		s.sendError(w, http.StatusInternalServerError, "merge failed: "+err.Error())
		return
	}

	derived := s.deriveZip("merged_"+strings.Join(names, "_"), merged)
	if err := s.store.Create(r.Context(), derived); err != nil {
		metrics.RecordArchiveMerge(false)
		logging.Error("store merged archive", zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to store merged archive")
		return
	}

	metrics.RecordArchiveMerge(true)
	logging.Info("archives merged",
		zap.Strings("sources", req.ZipIDs),
		zap.String("id", derived.ID),
		zap.Int("files", derived.Structure.FileCount))
	s.publishEvent(events.EventArchiveMerged, derived.ID, "", derived.Structure.FileCount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(protocol.MergeResponse{ID: derived.ID, FileCount: derived.Structure.FileCount})
}

// deriveZip builds the immutable record for a modify/merge result. Derived
// archives have no backing object; downloads re-encode from entries.
func (s *Server) deriveZip(name string, entries []models.ZipEntry) *models.StoredZip {
	ep := detect.Detect(entries)
	return &models.StoredZip{
		ID:           uuid.NewString(),
		OriginalName: name,
		Structure: models.ZipStructure{
			Entries:   entries,
			FileCount: archive.FileCount(entries),
		},
		Analysis:  models.ZipAnalysis{Description: archive.Describe(entries, ep)},
		CreatedAt: time.Now(),
	}
}

// ─── Analysis ───────────────────────────────────────────────────────────────

func (s *Server) handleZipEntryPoint(w http.ResponseWriter, r *http.Request) {
	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.EntryPointResponse{
		EntryPoint: detect.Detect(z.Structure.Entries),
	})
}

func (s *Server) handleZipIssues(w http.ResponseWriter, r *http.Request) {
	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}
	issues := scan.Analyze(z.Structure.Entries)
	for _, issue := range issues {
		metrics.RecordScannerIssue(issue.Severity)
	}
	if issues == nil {
		issues = []models.CodeIssue{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.IssuesResponse{Issues: issues})
}

func (s *Server) handleZipBundle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if html, ok := s.bundleCache.Get(id); ok {
		metrics.RecordBundleCache(true)
		s.writeBundle(w, html)
		return
	}
	metrics.RecordBundleCache(false)

	z, ok := s.loadZip(w, r)
	if !ok {
		return
	}

	start := time.Now()
	html := bundle.Bundle(z.Structure.Entries, detect.Detect(z.Structure.Entries))
	metrics.RecordBundle(time.Since(start))

	s.bundleCache.Add(id, html)
	s.writeBundle(w, html)
}

// writeBundle sends a bundled document under the execution sandbox policy.
// An empty bundle means "not runnable" and maps to 204.
func (s *Server) writeBundle(w http.ResponseWriter, html string) {
	if html == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", bundleSandboxCSP)
	io.WriteString(w, html)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// loadZip resolves the {id} path value to a stored archive, writing the error
// response itself on failure.
func (s *Server) loadZip(w http.ResponseWriter, r *http.Request) (*models.StoredZip, bool) {
	id := r.PathValue("id")
	z, err := s.store.Get(r.Context(), id)
	if errors.Is(err, archive.ErrNotFound) {
		s.sendError(w, http.StatusNotFound, "archive not found: "+id)
		return nil, false
	}
	if err != nil {
		logging.Error("load archive", zap.String("id", id), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "failed to load archive")
		return nil, false
	}
	return z, true
}

// writeJSON encodes v, gzip-compressed when the client accepts it. Used for
// the large entry-bearing payloads (full archives, workspace trees).
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if acceptsGzip(r) {
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzipPool.Get().(*gzip.Writer)
		gw.Reset(w)
		json.NewEncoder(gw).Encode(v)
		gw.Close()
		gzipPool.Put(gw)
		return
	}
	json.NewEncoder(w).Encode(v)
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(protocol.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func (s *Server) sendErrorDetails(w http.ResponseWriter, code int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(protocol.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
