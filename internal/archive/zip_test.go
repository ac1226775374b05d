package archive

import (
	"testing"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []models.ZipEntry{
		{Name: "index.html", Content: "<html></html>"},
		{Name: "css", IsFolder: true},
		{Name: "css/style.css", Content: "body {}"},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("entry count = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].IsFolder != in[i].IsFolder || out[i].Content != in[i].Content {
			t.Errorf("entry %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("this is not a zip")); err == nil {
		t.Fatal("Decode should fail on non-zip bytes")
	}
}

func TestFileCount(t *testing.T) {
	entries := []models.ZipEntry{
		{Name: "a", IsFolder: true},
		{Name: "a/b.txt"},
		{Name: "c.txt"},
	}
	if got := FileCount(entries); got != 2 {
		t.Errorf("FileCount = %d, want 2", got)
	}
}

func TestDescribe(t *testing.T) {
	entries := []models.ZipEntry{
		{Name: "index.html", Content: "<html></html>"},
		{Name: "assets", IsFolder: true},
	}
	ep := &models.EntryPoint{File: "index.html", Type: models.EntryHTML, Confidence: 1.0}

	desc := Describe(entries, ep)
	if desc != "1 files, 1 folders, entry point index.html (html, confidence 1.0)" {
		t.Errorf("Describe = %q", desc)
	}

	desc = Describe(entries, nil)
	if desc != "1 files, 1 folders, no runnable entry point" {
		t.Errorf("Describe = %q", desc)
	}
}
