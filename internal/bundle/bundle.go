// Package bundle assembles a single self-contained document from an entry
// set and a detected entry point, suitable for sandboxed execution.
//
// The caller must render the result inside an embedding context restricted to
// script execution and form submission; the HTTP layer enforces this with a
// CSP sandbox header. Bundling itself performs no isolation.
package bundle

import (
	"regexp"
	"strings"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

var (
	linkTagRegex   = regexp.MustCompile(`(?i)<link\b[^>]*>`)
	hrefRegex      = regexp.MustCompile(`(?i)href=["']([^"']+)["']`)
	stylesheetRe   = regexp.MustCompile(`(?i)rel=["']stylesheet["']`)
	scriptTagRegex = regexp.MustCompile(`(?i)<script\b[^>]*\bsrc=["']([^"']+)["'][^>]*>\s*</script>`)
)

// Bundle inlines referenced stylesheets and scripts into one document.
// A nil entry point, or one with no bundling defined for its type, yields an
// empty string — "not runnable", not an error.
func Bundle(entries []models.ZipEntry, ep *models.EntryPoint) string {
	if ep == nil {
		return ""
	}
	switch ep.Type {
	case models.EntryHTML:
		return bundleHTML(entries, ep.File)
	case models.EntryJavaScript:
		return bundleJS(entries, ep.File)
	default:
		return ""
	}
}

func bundleHTML(entries []models.ZipEntry, file string) string {
	doc, ok := lookup(entries, file)
	if !ok {
		return ""
	}

	// Inline stylesheets: replace each matched <link rel="stylesheet"> tag in
	// place; tags whose href resolves to no file are left untouched.
	for _, tag := range linkTagRegex.FindAllString(doc, -1) {
		if !stylesheetRe.MatchString(tag) {
			continue
		}
		href := hrefRegex.FindStringSubmatch(tag)
		if href == nil {
			continue
		}
		if css, ok := resolve(entries, href[1]); ok {
			doc = strings.Replace(doc, tag, "<style>\n"+css+"\n</style>", 1)
		}
	}

	// Inline scripts the same way.
	for _, m := range scriptTagRegex.FindAllStringSubmatch(doc, -1) {
		tag, src := m[0], m[1]
		if js, ok := resolve(entries, src); ok {
			doc = strings.Replace(doc, tag, "<script>\n"+js+"\n</script>", 1)
		}
	}

	return doc
}

// bundleJS wraps the entry script in a minimal HTML shell. Only the entry
// file is embedded; unreferenced sibling scripts are never appended.
func bundleJS(entries []models.ZipEntry, file string) string {
	js, ok := lookup(entries, file)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + file + "</title>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("<div id=\"app\"></div>\n<pre id=\"output\"></pre>\n")
	b.WriteString("<script>\n")
	b.WriteString(js)
	b.WriteString("\n</script>\n</body>\n</html>\n")
	return b.String()
}

// lookup finds a file entry by exact path.
func lookup(entries []models.ZipEntry, name string) (string, bool) {
	for _, e := range entries {
		if !e.IsFolder && e.Name == name {
			return e.Content, true
		}
	}
	return "", false
}

// resolve matches a referenced asset path against the entry set: exact path
// equality first, then suffix match (tolerates archive-relative vs. nested
// prefixes). First matching file wins.
func resolve(entries []models.ZipEntry, ref string) (string, bool) {
	for _, e := range entries {
		if !e.IsFolder && e.Name == ref {
			return e.Content, true
		}
	}
	for _, e := range entries {
		if !e.IsFolder && strings.HasSuffix(e.Name, ref) {
			return e.Content, true
		}
	}
	return "", false
}
