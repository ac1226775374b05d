package archive

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

// ConflictError reports colliding paths that the caller supplied no strategy
// for. There is no implicit default; the caller must choose one per path.
type ConflictError struct {
	Paths []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unresolved merge conflicts: %s", strings.Join(e.Paths, ", "))
}

type occurrence struct {
	archive int // 0-based index into the archive list
	entry   models.ZipEntry
}

// Merge computes the union of all paths across the archives, in archive
// order, and resolves each colliding path with its supplied strategy:
// "first" keeps the earliest archive's entry, "last" the latest, and
// "rename" keeps every colliding entry with a 1-based archive-index suffix
// before the file extension. Colliding folders always collapse to a single
// folder entry (they carry hierarchy, not content). Inputs are never mutated.
func Merge(archives [][]models.ZipEntry, resolutions map[string]string) ([]models.ZipEntry, error) {
	byPath := make(map[string][]occurrence)
	var order []string

	for i, entries := range archives {
		for _, e := range entries {
			if _, seen := byPath[e.Name]; !seen {
				order = append(order, e.Name)
			}
			byPath[e.Name] = append(byPath[e.Name], occurrence{archive: i, entry: e})
		}
	}

	// Validate before producing anything: a single unresolved collision
	// fails the whole merge.
	var unresolved []string
	for _, p := range order {
		occs := byPath[p]
		if len(occs) < 2 || occs[0].entry.IsFolder {
			continue
		}
		switch resolutions[p] {
		case models.MergeFirst, models.MergeLast, models.MergeRename:
		default:
			unresolved = append(unresolved, p)
		}
	}
	if len(unresolved) > 0 {
		return nil, &ConflictError{Paths: unresolved}
	}

	var out []models.ZipEntry
	for _, p := range order {
		occs := byPath[p]
		if len(occs) == 1 || occs[0].entry.IsFolder {
			out = append(out, occs[0].entry)
			continue
		}
		switch resolutions[p] {
		case models.MergeFirst:
			out = append(out, occs[0].entry)
		case models.MergeLast:
			out = append(out, occs[len(occs)-1].entry)
		case models.MergeRename:
			for _, o := range occs {
				ne := o.entry
				ne.Name = suffixName(p, o.archive+1)
				out = append(out, ne)
			}
		}
	}
	return out, nil
}

// suffixName inserts _<n> before the file extension: "a.txt" -> "a_2.txt".
func suffixName(name string, n int) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "_" + strconv.Itoa(n) + ext
}
