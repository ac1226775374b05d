package detect

import (
	"testing"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

func files(names ...string) []models.ZipEntry {
	entries := make([]models.ZipEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, models.ZipEntry{Name: n})
	}
	return entries
}

func TestDetectPriorityChain(t *testing.T) {
	tests := []struct {
		name       string
		entries    []models.ZipEntry
		wantFile   string
		wantType   string
		wantConf   float64
		wantNilEP  bool
	}{
		{
			name:     "root index.html wins over everything",
			entries:  files("main.js", "docs/index.html", "index.html"),
			wantFile: "index.html",
			wantType: models.EntryHTML,
			wantConf: 1.0,
		},
		{
			name:     "nested index.html",
			entries:  files("main.js", "public/index.html"),
			wantFile: "public/index.html",
			wantType: models.EntryHTML,
			wantConf: 0.9,
		},
		{
			name:     "root-level html file",
			entries:  files("page.html", "main.js"),
			wantFile: "page.html",
			wantType: models.EntryHTML,
			wantConf: 0.8,
		},
		{
			name:     "js candidate order beats file order",
			entries:  files("src/app.js", "src/main.js"),
			wantFile: "src/main.js",
			wantType: models.EntryJavaScript,
			wantConf: 0.7,
		},
		{
			name:     "python entry",
			entries:  files("lib/util.py", "app.py"),
			wantFile: "app.py",
			wantType: models.EntryPython,
			wantConf: 0.7,
		},
		{
			name:     "nested html as last resort",
			entries:  files("deep/dir/page.html", "readme.md"),
			wantFile: "deep/dir/page.html",
			wantType: models.EntryHTML,
			wantConf: 0.5,
		},
		{
			name:      "nothing runnable",
			entries:   files("style.css", "data.json", "notes.txt"),
			wantNilEP: true,
		},
		{
			name:      "empty archive",
			entries:   nil,
			wantNilEP: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := Detect(tt.entries)
			if tt.wantNilEP {
				if ep != nil {
					t.Fatalf("Detect() = %+v, want nil", ep)
				}
				return
			}
			if ep == nil {
				t.Fatal("Detect() = nil")
			}
			if ep.File != tt.wantFile {
				t.Errorf("File = %q, want %q", ep.File, tt.wantFile)
			}
			if ep.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", ep.Type, tt.wantType)
			}
			if ep.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", ep.Confidence, tt.wantConf)
			}
		})
	}
}

func TestDetectTiesResolveToFirstOccurrence(t *testing.T) {
	ep := Detect(files("b/index.html", "a/index.html"))
	if ep == nil || ep.File != "b/index.html" {
		t.Fatalf("ties should go to first occurrence, got %+v", ep)
	}
}

func TestDetectIgnoresFolders(t *testing.T) {
	entries := []models.ZipEntry{
		{Name: "index.html", IsFolder: true},
		{Name: "main.js"},
	}
	ep := Detect(entries)
	if ep == nil || ep.Type != models.EntryJavaScript {
		t.Fatalf("folder named index.html must not match, got %+v", ep)
	}
}

func TestDetectIsPure(t *testing.T) {
	entries := files("main.js", "index.html")
	Detect(entries)
	if entries[0].Name != "main.js" || entries[1].Name != "index.html" {
		t.Error("Detect must not reorder the input")
	}
}
