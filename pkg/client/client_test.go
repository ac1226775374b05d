package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/protocol"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/retry"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	c := New(Config{
		BaseURL: ts.URL,
		RetryConfig: retry.Config{
			MaxAttempts: 3,
			InitialWait: time.Millisecond,
			MaxWait:     time.Millisecond,
			Multiplier:  2.0,
		},
	})
	return c, ts
}

func TestLoginInstallsToken(t *testing.T) {
	var gotAuth string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token":
			json.NewEncoder(w).Encode(protocol.TokenResponse{Token: "tok123"})
		case "/api/zips":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(protocol.ZipListResponse{})
		}
	}))
	defer ts.Close()

	token, err := c.Login(context.Background(), "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok123" {
		t.Errorf("token = %q", token)
	}

	if _, err := c.ListArchives(context.Background()); err != nil {
		t.Fatalf("ListArchives: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestUploadArchiveSendsNoAuth(t *testing.T) {
	var gotAuth, gotCT string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	c.SetAuthToken("secret")

	if err := c.UploadArchive(context.Background(), ts.URL+"/upload/x.zip", []byte("data")); err != nil {
		t.Fatalf("UploadArchive: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("upload must not carry the auth header, got %q", gotAuth)
	}
	if gotCT != "application/zip" {
		t.Errorf("Content-Type = %q", gotCT)
	}
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(protocol.ZipListResponse{
			Zips: []protocol.ZipSummary{{ID: "z1"}},
		})
	}))
	defer ts.Close()

	zips, err := c.ListArchives(context.Background())
	if err != nil {
		t.Fatalf("ListArchives: %v", err)
	}
	if len(zips) != 1 || zips[0].ID != "z1" {
		t.Errorf("zips = %+v", zips)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoJSONFailsFastOnClientErrors(t *testing.T) {
	var calls int32
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{
			Error:   "unresolved merge conflicts",
			Code:    422,
			Details: "shared.txt",
		})
	}))
	defer ts.Close()

	_, err := c.Merge(context.Background(), []string{"a", "b"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "unresolved merge conflicts: shared.txt" {
		t.Errorf("err = %q", err.Error())
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("4xx must not retry, calls = %d", calls)
	}
}

func TestFetchBundleNoContent(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	html, err := c.FetchBundle(context.Background(), "z1")
	if err != nil {
		t.Fatalf("FetchBundle: %v", err)
	}
	if html != "" {
		t.Errorf("204 should yield empty bundle, got %q", html)
	}
}

func TestModifyPayload(t *testing.T) {
	var got protocol.ModifyRequest
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(protocol.ZipRef{ID: "new", FileCount: 1})
	}))
	defer ts.Close()

	ref, err := c.Modify(context.Background(), "z1",
		[]string{"drop.txt"},
		[]models.RenamePair{{OldPath: "a", NewPath: "b"}})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if ref.ID != "new" {
		t.Errorf("ref = %+v", ref)
	}
	if len(got.DeletedPaths) != 1 || got.DeletedPaths[0] != "drop.txt" {
		t.Errorf("request deletions = %v", got.DeletedPaths)
	}
	if len(got.RenamedPaths) != 1 || got.RenamedPaths[0].NewPath != "b" {
		t.Errorf("request renames = %v", got.RenamedPaths)
	}
}

func TestPingTracksOnline(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !c.IsOnline() {
		t.Error("IsOnline should be true after successful ping")
	}

	ts.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("Ping should fail against a closed server")
	}
	if c.IsOnline() {
		t.Error("IsOnline should be false after failed ping")
	}
}
