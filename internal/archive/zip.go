// Package archive handles the flat archive representation: ZIP codec,
// metadata persistence, and the copy-on-write diff and merge engines.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

// Decode parses raw ZIP bytes into ordered flat entries. Entries are
// text-decoded; binary members are carried as raw strings. Any read failure
// aborts the whole decode so no partial entry list ever escapes.
func Decode(data []byte) ([]models.ZipEntry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	entries := make([]models.ZipEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			entries = append(entries, models.ZipEntry{
				Name:     strings.TrimSuffix(f.Name, "/"),
				IsFolder: true,
			})
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
		}

		entries = append(entries, models.ZipEntry{
			Name:    f.Name,
			Content: string(content),
		})
	}

	return entries, nil
}

// Encode serializes flat entries back to ZIP bytes, preserving entry order
// and folder markers.
func Encode(entries []models.ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		if e.IsFolder {
			if _, err := zw.Create(e.Name + "/"); err != nil {
				return nil, fmt.Errorf("write folder %s: %w", e.Name, err)
			}
			continue
		}
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("write entry %s: %w", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Content)); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// FileCount counts file entries, folders excluded.
func FileCount(entries []models.ZipEntry) int {
	count := 0
	for _, e := range entries {
		if !e.IsFolder {
			count++
		}
	}
	return count
}

// Describe produces the informational one-line summary stored alongside an
// archive.
func Describe(entries []models.ZipEntry, ep *models.EntryPoint) string {
	files := FileCount(entries)
	folders := len(entries) - files
	desc := fmt.Sprintf("%d files, %d folders", files, folders)
	if ep != nil {
		desc += fmt.Sprintf(", entry point %s (%s, confidence %.1f)", ep.File, ep.Type, ep.Confidence)
	} else {
		desc += ", no runnable entry point"
	}
	return desc
}
