package archive

import "github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"

// Apply produces a new entry list with the requested deletions and renames
// applied. Both are keyed by original path: a path that is deleted and also
// renamed is removed, never emitted under its rename target. The input slice
// is read-only; the result is a fresh slice (copy-on-write).
func Apply(entries []models.ZipEntry, deletedPaths []string, renames []models.RenamePair) []models.ZipEntry {
	deleted := make(map[string]struct{}, len(deletedPaths))
	for _, p := range deletedPaths {
		deleted[p] = struct{}{}
	}
	renamed := make(map[string]string, len(renames))
	for _, r := range renames {
		renamed[r.OldPath] = r.NewPath
	}

	out := make([]models.ZipEntry, 0, len(entries))
	for _, e := range entries {
		if _, gone := deleted[e.Name]; gone {
			continue
		}
		ne := e
		if target, ok := renamed[e.Name]; ok {
			ne.Name = target
		}
		out = append(out, ne)
	}
	return out
}
