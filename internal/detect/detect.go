// Package detect guesses the runnable entry point of an archive.
//
// Detection is a fixed priority chain evaluated against the file entries in
// their original order; the entry set is never re-sorted, so ties resolve to
// first occurrence. It is a pure function and must be re-run whenever the
// entry set changes.
package detect

import (
	"strings"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

var jsCandidates = []string{"main.js", "app.js", "index.js", "script.js"}
var pyCandidates = []string{"main.py", "app.py", "__main__.py"}

// Detect returns the best-guess entry point, or nil when the archive has no
// runnable entry. A nil result is a normal outcome, not an error.
func Detect(entries []models.ZipEntry) *models.EntryPoint {
	files := make([]models.ZipEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsFolder {
			files = append(files, e)
		}
	}

	// 1. index.html at the archive root
	for _, f := range files {
		if f.Name == "index.html" {
			return &models.EntryPoint{
				File:       f.Name,
				Type:       models.EntryHTML,
				Confidence: 1.0,
				Reason:     "index.html at archive root",
			}
		}
	}

	// 2. index.html in any folder
	for _, f := range files {
		if strings.HasSuffix(f.Name, "/index.html") {
			return &models.EntryPoint{
				File:       f.Name,
				Type:       models.EntryHTML,
				Confidence: 0.9,
				Reason:     "nested index.html",
			}
		}
	}

	// 3. any root-level HTML file
	for _, f := range files {
		if !strings.Contains(f.Name, "/") && strings.HasSuffix(f.Name, ".html") {
			return &models.EntryPoint{
				File:       f.Name,
				Type:       models.EntryHTML,
				Confidence: 0.8,
				Reason:     "root-level HTML file",
			}
		}
	}

	// 4. conventional JavaScript entry names, in candidate order
	for _, candidate := range jsCandidates {
		for _, f := range files {
			if strings.HasSuffix(f.Name, candidate) {
				return &models.EntryPoint{
					File:       f.Name,
					Type:       models.EntryJavaScript,
					Confidence: 0.7,
					Reason:     "JavaScript entry script " + candidate,
				}
			}
		}
	}

	// 5. conventional Python entry names, in candidate order
	for _, candidate := range pyCandidates {
		for _, f := range files {
			if strings.HasSuffix(f.Name, candidate) {
				return &models.EntryPoint{
					File:       f.Name,
					Type:       models.EntryPython,
					Confidence: 0.7,
					Reason:     "Python entry script " + candidate,
				}
			}
		}
	}

	// 6. any HTML file anywhere, all better guesses having failed
	for _, f := range files {
		if strings.HasSuffix(f.Name, ".html") {
			return &models.EntryPoint{
				File:       f.Name,
				Type:       models.EntryHTML,
				Confidence: 0.5,
				Reason:     "first HTML file found",
			}
		}
	}

	return nil
}
