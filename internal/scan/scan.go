// Package scan provides the heuristic per-file issue scanner.
//
// Every check is a regex or substring approximation, not a parse, and every
// threshold is deliberate: more than 5 extra opening tags (tolerance for
// self-closing tags), more than 3 console.log calls. Checks work at file
// granularity; no line numbers are computed.
package scan

import (
	"path"
	"regexp"
	"strings"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

var (
	openTagRegex  = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	closeTagRegex = regexp.MustCompile(`</[a-zA-Z]`)
)

// Analyze scans every file entry and returns the combined issue list.
// It never fails; an empty list is a valid outcome.
func Analyze(entries []models.ZipEntry) []models.CodeIssue {
	var issues []models.CodeIssue
	for _, e := range entries {
		if e.IsFolder {
			continue
		}
		issues = append(issues, AnalyzeFile(e.Name, e.Content)...)
	}
	return issues
}

// AnalyzeFile dispatches on the file extension and returns the issues found
// in a single file.
func AnalyzeFile(name, content string) []models.CodeIssue {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return scanHTML(name, content)
	case ".js", ".mjs":
		return scanJS(name, content)
	case ".css":
		return scanCSS(name, content)
	default:
		return nil
	}
}

func scanHTML(name, content string) []models.CodeIssue {
	var issues []models.CodeIssue

	if !strings.Contains(content, "<!DOCTYPE") && !strings.Contains(content, "<!doctype") {
		issues = append(issues, models.CodeIssue{
			File:       name,
			Severity:   models.SeverityWarning,
			Message:    "missing doctype declaration",
			Suggestion: "add <!DOCTYPE html> at the top of the document",
		})
	}

	openTags := len(openTagRegex.FindAllString(content, -1))
	closeTags := len(closeTagRegex.FindAllString(content, -1))
	if openTags-closeTags > 5 {
		issues = append(issues, models.CodeIssue{
			File:     name,
			Severity: models.SeverityError,
			Message:  "possible unclosed tags",
		})
	}

	if strings.Contains(content, "<head") && !strings.Contains(content, "charset") {
		issues = append(issues, models.CodeIssue{
			File:       name,
			Severity:   models.SeverityInfo,
			Message:    "no charset declared in <head>",
			Suggestion: `add <meta charset="UTF-8">`,
		})
	}

	return issues
}

func scanJS(name, content string) []models.CodeIssue {
	var issues []models.CodeIssue

	if strings.Count(content, "console.log") > 3 {
		issues = append(issues, models.CodeIssue{
			File:       name,
			Severity:   models.SeverityInfo,
			Message:    "more than 3 console.log calls",
			Suggestion: "remove debug logging before publishing",
		})
	}

	if strings.Count(content, "{") != strings.Count(content, "}") {
		issues = append(issues, models.CodeIssue{
			File:     name,
			Severity: models.SeverityError,
			Message:  "mismatched braces",
		})
	}

	if strings.Contains(content, "var ") {
		issues = append(issues, models.CodeIssue{
			File:       name,
			Severity:   models.SeverityWarning,
			Message:    "prefer block-scoped declarations",
			Suggestion: "use let or const instead of var",
		})
	}

	return issues
}

func scanCSS(name, content string) []models.CodeIssue {
	if strings.Count(content, "{") != strings.Count(content, "}") {
		return []models.CodeIssue{{
			File:     name,
			Severity: models.SeverityError,
			Message:  "mismatched braces",
		}}
	}
	return nil
}
