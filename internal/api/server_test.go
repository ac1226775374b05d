package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/archive"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/auth"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/config"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/events"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/storage/local"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/protocol"
)

func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()

	cfg := &config.Config{
		PublicBaseURL: "http://test",
		MaxUploadSize: 10 << 20,
		JWTSecret:     "test-secret",
		AuthPassword:  "hunter2",

		TokenTTLMinutes: 60,
	}

	authHandler, err := auth.New(cfg)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	token, _, err := authHandler.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	backend, err := local.New(local.Config{RootPath: t.TempDir(), CreateDirs: true})
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	srv := NewServer(archive.NewMemoryStore(), backend, authHandler, events.NewBroadcaster(), cfg)
	return srv.Handler(), token
}

// do performs an authenticated request against the handler.
func do(t *testing.T, h http.Handler, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

// ingestZip uploads and registers an archive, returning its ID.
func ingestZip(t *testing.T, h http.Handler, token, name string, entries []models.ZipEntry) string {
	t.Helper()

	data, err := archive.Encode(entries)
	if err != nil {
		t.Fatalf("encode zip: %v", err)
	}

	w := do(t, h, token, "POST", "/api/zips/upload-url", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("upload-url: %d %s", w.Code, w.Body.String())
	}
	target := decode[protocol.UploadURLResponse](t, w)

	// Local backend: upload URL points at the capability sink
	path := strings.TrimPrefix(target.UploadURL, "http://test")
	w = do(t, h, "", "PUT", path, data)
	if w.Code != http.StatusOK {
		t.Fatalf("direct upload: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, token, "POST", "/api/zips", protocol.CreateZipRequest{
		Filename:   name,
		ObjectPath: target.ObjectPath,
		Size:       int64(len(data)),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create zip: %d %s", w.Code, w.Body.String())
	}
	return decode[protocol.ZipRef](t, w).ID
}

func webProject() []models.ZipEntry {
	return []models.ZipEntry{
		{Name: "index.html", Content: `<!DOCTYPE html><html><head><meta charset="UTF-8"><link rel="stylesheet" href="style.css"></head><body><script src="app.js"></script></body></html>`},
		{Name: "style.css", Content: "body { margin: 0; }"},
		{Name: "app.js", Content: "console.log('hi');"},
	}
}

func TestAuthRequired(t *testing.T) {
	h, _ := newTestServer(t)

	if w := do(t, h, "", "GET", "/api/zips", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d, want 401", w.Code)
	}
	if w := do(t, h, "bogus", "GET", "/api/zips", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d, want 401", w.Code)
	}
	if w := do(t, h, "", "GET", "/health", nil); w.Code != http.StatusOK {
		t.Errorf("health should be public: %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, "", "POST", "/api/auth/token", protocol.TokenRequest{Password: "hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	resp := decode[protocol.TokenResponse](t, w)
	if resp.Token == "" {
		t.Fatal("empty token")
	}

	if w := do(t, h, resp.Token, "GET", "/api/zips", nil); w.Code != http.StatusOK {
		t.Errorf("issued token rejected: %d", w.Code)
	}

	w = do(t, h, "", "POST", "/api/auth/token", protocol.TokenRequest{Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d, want 401", w.Code)
	}
}

func TestIngestAndInspect(t *testing.T) {
	h, token := newTestServer(t)
	id := ingestZip(t, h, token, "web.zip", webProject())

	w := do(t, h, token, "GET", "/api/zips", nil)
	list := decode[protocol.ZipListResponse](t, w)
	if len(list.Zips) != 1 || list.Zips[0].FileCount != 3 {
		t.Fatalf("list = %+v", list)
	}

	w = do(t, h, token, "GET", "/api/zips/"+id, nil)
	z := decode[models.StoredZip](t, w)
	if len(z.Structure.Entries) != 3 || z.OriginalName != "web.zip" {
		t.Fatalf("get = %+v", z)
	}

	w = do(t, h, token, "GET", "/api/zips/"+id+"/file/style.css", nil)
	if w.Code != http.StatusOK || w.Body.String() != "body { margin: 0; }" {
		t.Errorf("file fetch: %d %q", w.Code, w.Body.String())
	}
	if w := do(t, h, token, "GET", "/api/zips/"+id+"/file/nope.css", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing file: %d, want 404", w.Code)
	}

	w = do(t, h, token, "GET", "/api/zips/"+id+"/entrypoint", nil)
	ep := decode[protocol.EntryPointResponse](t, w)
	if ep.EntryPoint == nil || ep.EntryPoint.File != "index.html" || ep.EntryPoint.Confidence != 1.0 {
		t.Errorf("entrypoint = %+v", ep.EntryPoint)
	}

	w = do(t, h, token, "GET", "/api/zips/"+id+"/issues", nil)
	if w.Code != http.StatusOK {
		t.Errorf("issues: %d", w.Code)
	}
}

func TestBundleEndpoint(t *testing.T) {
	h, token := newTestServer(t)
	id := ingestZip(t, h, token, "web.zip", webProject())

	w := do(t, h, token, "GET", "/api/zips/"+id+"/bundle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bundle: %d", w.Code)
	}
	if got := w.Header().Get("Content-Security-Policy"); got != "sandbox allow-scripts allow-forms" {
		t.Errorf("CSP header = %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "body { margin: 0; }") || !strings.Contains(body, "console.log('hi');") {
		t.Errorf("assets not inlined:\n%s", body)
	}

	// Cached second hit returns the same document
	w2 := do(t, h, token, "GET", "/api/zips/"+id+"/bundle", nil)
	if w2.Body.String() != body {
		t.Error("cached bundle differs")
	}

	// Not runnable archive: 204
	plainID := ingestZip(t, h, token, "docs.zip", []models.ZipEntry{{Name: "readme.txt", Content: "hi"}})
	if w := do(t, h, token, "GET", "/api/zips/"+plainID+"/bundle", nil); w.Code != http.StatusNoContent {
		t.Errorf("non-runnable bundle: %d, want 204", w.Code)
	}
}

func TestModifyCreatesNewArchive(t *testing.T) {
	h, token := newTestServer(t)
	id := ingestZip(t, h, token, "web.zip", webProject())

	w := do(t, h, token, "POST", "/api/zips/"+id+"/modify", protocol.ModifyRequest{
		DeletedPaths: []string{"style.css"},
		RenamedPaths: []models.RenamePair{{OldPath: "app.js", NewPath: "main.js"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("modify: %d %s", w.Code, w.Body.String())
	}
	ref := decode[protocol.ZipRef](t, w)
	if ref.ID == id {
		t.Error("modify must mint a new archive ID")
	}
	if ref.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", ref.FileCount)
	}

	// Source archive untouched
	w = do(t, h, token, "GET", "/api/zips/"+id, nil)
	if z := decode[models.StoredZip](t, w); z.Structure.FileCount != 3 {
		t.Error("source archive mutated by modify")
	}

	w = do(t, h, token, "GET", "/api/zips/"+ref.ID, nil)
	z := decode[models.StoredZip](t, w)
	for _, e := range z.Structure.Entries {
		if e.Name == "style.css" || e.Name == "app.js" {
			t.Errorf("unexpected entry %q in derived archive", e.Name)
		}
	}
}

func TestMergeEndpoint(t *testing.T) {
	h, token := newTestServer(t)
	a := ingestZip(t, h, token, "a.zip", []models.ZipEntry{
		{Name: "shared.txt", Content: "A"},
		{Name: "only-a.txt", Content: "a"},
	})
	b := ingestZip(t, h, token, "b.zip", []models.ZipEntry{
		{Name: "shared.txt", Content: "B"},
	})

	// Unresolved collision: 422 naming the path
	w := do(t, h, token, "POST", "/api/zips/merge", protocol.MergeRequest{ZipIDs: []string{a, b}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unresolved merge: %d, want 422", w.Code)
	}
	errResp := decode[protocol.ErrorResponse](t, w)
	if !strings.Contains(errResp.Details, "shared.txt") {
		t.Errorf("422 details = %q", errResp.Details)
	}

	w = do(t, h, token, "POST", "/api/zips/merge", protocol.MergeRequest{
		ZipIDs:              []string{a, b},
		ConflictResolutions: map[string]string{"shared.txt": models.MergeLast},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("merge: %d %s", w.Code, w.Body.String())
	}
	merged := decode[protocol.MergeResponse](t, w)
	if merged.FileCount != 2 {
		t.Errorf("merged FileCount = %d, want 2", merged.FileCount)
	}

	w = do(t, h, token, "GET", "/api/zips/"+merged.ID+"/file/shared.txt", nil)
	if w.Body.String() != "B" {
		t.Errorf("last strategy should keep B, got %q", w.Body.String())
	}
}

func TestWorkspaceFlow(t *testing.T) {
	h, token := newTestServer(t)
	id := ingestZip(t, h, token, "web.zip", webProject())

	w := do(t, h, token, "POST", "/api/workspaces", protocol.CreateWorkspaceRequest{ZipID: id})
	if w.Code != http.StatusCreated {
		t.Fatalf("create workspace: %d %s", w.Code, w.Body.String())
	}
	ws := decode[protocol.WorkspaceResponse](t, w)
	if ws.FileCount != 3 {
		t.Errorf("workspace FileCount = %d", ws.FileCount)
	}

	w = do(t, h, token, "GET", "/api/workspaces/"+ws.ID+"/tree", nil)
	tree := decode[protocol.TreeResponse](t, w)
	if tree.Root == nil || len(tree.Root.Children) != 3 {
		t.Fatalf("tree = %+v", tree.Root)
	}

	// Save a new file, then inject into it
	w = do(t, h, token, "PUT", "/api/workspaces/"+ws.ID+"/file/src/extra.js", []byte("base();"))
	if w.Code != http.StatusOK {
		t.Fatalf("save file: %d %s", w.Code, w.Body.String())
	}
	w = do(t, h, token, "POST", "/api/workspaces/"+ws.ID+"/inject", protocol.InjectRequest{
		Path: "src/extra.js", Snippet: "// hdr\n", Position: "start",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("inject: %d %s", w.Code, w.Body.String())
	}
	w = do(t, h, token, "GET", "/api/workspaces/"+ws.ID+"/file/src/extra.js", nil)
	if w.Body.String() != "// hdr\nbase();" {
		t.Errorf("file after inject = %q", w.Body.String())
	}

	w = do(t, h, token, "POST", "/api/workspaces/"+ws.ID+"/replace", protocol.ReplaceRequest{
		Path: "app.js", Pattern: "console.log('hi');", Replacement: "run();",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("replace: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, token, "GET", "/api/workspaces/"+ws.ID+"/search?q=run", nil)
	search := decode[protocol.SearchResponse](t, w)
	if len(search.Results) != 1 || search.Results[0].File != "app.js" {
		t.Errorf("search = %+v", search.Results)
	}

	w = do(t, h, token, "GET", "/api/workspaces/"+ws.ID+"/analyze/app.js", nil)
	stats := decode[protocol.AnalyzeResponse](t, w)
	if stats.Language != "javascript" {
		t.Errorf("analyze = %+v", stats)
	}

	// Workspace bundle reflects the live edit
	w = do(t, h, token, "GET", "/api/workspaces/"+ws.ID+"/bundle", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "run();") {
		t.Errorf("workspace bundle stale: %d", w.Code)
	}

	// Source archive never sees workspace edits
	w = do(t, h, token, "GET", "/api/zips/"+id+"/file/app.js", nil)
	if w.Body.String() != "console.log('hi');" {
		t.Error("workspace edit leaked into stored archive")
	}

	if w := do(t, h, token, "DELETE", "/api/workspaces/"+ws.ID, nil); w.Code != http.StatusOK {
		t.Errorf("delete workspace: %d", w.Code)
	}
	if w := do(t, h, token, "GET", "/api/workspaces/"+ws.ID+"/tree", nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted workspace tree: %d, want 404", w.Code)
	}
}

func TestDirectUploadGuards(t *testing.T) {
	h, token := newTestServer(t)

	// Uploads outside the handed-out prefix are rejected
	w := do(t, h, "", "PUT", "/api/zips/upload/evil/path.zip", []byte("x"))
	if w.Code != http.StatusForbidden {
		t.Errorf("out-of-prefix upload: %d, want 403", w.Code)
	}

	// Encoded dot segments survive mux path cleaning but decode into the
	// path value; they must never reach the storage backend
	w = do(t, h, "", "PUT", "/api/zips/upload/uploads/%2e%2e/%2e%2e/escaped.zip", []byte("x"))
	if w.Code != http.StatusForbidden {
		t.Errorf("dot-segment upload: %d, want 403", w.Code)
	}

	// A well-shaped path the server never issued is not a credential
	w = do(t, h, "", "PUT", "/api/zips/upload/uploads/5a8f0f3e-0000-4000-8000-000000000000.zip", []byte("x"))
	if w.Code != http.StatusForbidden {
		t.Errorf("uninvited upload: %d, want 403", w.Code)
	}

	// Issued upload URLs are single-use
	w = do(t, h, token, "POST", "/api/zips/upload-url", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("upload-url: %d", w.Code)
	}
	target := decode[protocol.UploadURLResponse](t, w)
	path := strings.TrimPrefix(target.UploadURL, "http://test")
	if w = do(t, h, "", "PUT", path, []byte("x")); w.Code != http.StatusOK {
		t.Fatalf("first upload: %d %s", w.Code, w.Body.String())
	}
	if w = do(t, h, "", "PUT", path, []byte("x")); w.Code != http.StatusForbidden {
		t.Errorf("reused upload URL: %d, want 403", w.Code)
	}
}

func TestCreateZipRejectsForeignObjectPaths(t *testing.T) {
	h, token := newTestServer(t)

	// Only the uploads/<uuid>.zip shape handed out by upload-url is fetchable
	for _, objectPath := range []string{
		"../../etc/passwd",
		"uploads/../../etc/passwd",
		"uploads/notauuid.zip",
	} {
		w := do(t, h, token, "POST", "/api/zips", protocol.CreateZipRequest{
			Filename:   "x.zip",
			ObjectPath: objectPath,
			Size:       1,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("objectPath %q: %d, want 400", objectPath, w.Code)
		}
	}
}

func TestWorkspaceSaveRejectsOversizedBody(t *testing.T) {
	h, token := newTestServer(t)
	zipID := ingestZip(t, h, token, "web.zip", webProject())

	w := do(t, h, token, "POST", "/api/workspaces", protocol.CreateWorkspaceRequest{ZipID: zipID})
	if w.Code != http.StatusCreated {
		t.Fatalf("create workspace: %d %s", w.Code, w.Body.String())
	}
	wsID := decode[protocol.WorkspaceResponse](t, w).ID

	big := bytes.Repeat([]byte("a"), int(10<<20)+1)
	w = do(t, h, token, "PUT", "/api/workspaces/"+wsID+"/file/app.js", big)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized save: %d, want 413", w.Code)
	}

	// The file keeps its original content rather than a truncated body
	w = do(t, h, token, "GET", "/api/workspaces/"+wsID+"/file/app.js", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get file: %d", w.Code)
	}
	if w.Body.String() != "console.log('hi');" {
		t.Errorf("file content changed after rejected save: %d bytes", w.Body.Len())
	}
}
