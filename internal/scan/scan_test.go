package scan

import (
	"strings"
	"testing"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

func severities(issues []models.CodeIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Severity)
	}
	return out
}

func TestScanHTML(t *testing.T) {
	t.Run("clean document", func(t *testing.T) {
		doc := `<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body><p>ok</p></body></html>`
		if issues := AnalyzeFile("index.html", doc); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})

	t.Run("missing doctype", func(t *testing.T) {
		issues := AnalyzeFile("page.html", `<html><head><meta charset="UTF-8"></head><body></body></html>`)
		if len(issues) != 1 || issues[0].Severity != models.SeverityWarning {
			t.Errorf("expected one warning, got %v", issues)
		}
	})

	t.Run("tag imbalance needs more than five", func(t *testing.T) {
		// The base document already carries a delta of 1 (<meta> never
		// closes), so 4 unclosed divs sit exactly at the threshold.
		doc := "<!DOCTYPE html><html><head><meta charset=\"UTF-8\"></head><body>" +
			strings.Repeat("<div>", 4) + "</body></html>"
		for _, issue := range AnalyzeFile("a.html", doc) {
			if issue.Severity == models.SeverityError {
				t.Errorf("delta of 5 should not be an error: %v", issue)
			}
		}

		// One more unclosed div crosses it
		doc = "<!DOCTYPE html><html><head><meta charset=\"UTF-8\"></head><body>" +
			strings.Repeat("<div>", 5) + "</body></html>"
		found := false
		for _, issue := range AnalyzeFile("a.html", doc) {
			if issue.Severity == models.SeverityError {
				found = true
			}
		}
		if !found {
			t.Error("delta of 6 should report an error")
		}
	})

	t.Run("head without charset", func(t *testing.T) {
		issues := AnalyzeFile("a.html", `<!DOCTYPE html><html><head><title>t</title></head><body></body></html>`)
		if got := severities(issues); len(got) != 1 || got[0] != models.SeverityInfo {
			t.Errorf("expected one info, got %v", issues)
		}
	})
}

func TestScanJS(t *testing.T) {
	t.Run("console log threshold", func(t *testing.T) {
		// Exactly 3: fine
		js := strings.Repeat("console.log(1);\n", 3)
		if issues := AnalyzeFile("a.js", js); len(issues) != 0 {
			t.Errorf("3 console.log calls should pass, got %v", issues)
		}
		// 4: info, and only info — braces are balanced
		js = strings.Repeat("console.log(1);\n", 4)
		issues := AnalyzeFile("a.js", js)
		if got := severities(issues); len(got) != 1 || got[0] != models.SeverityInfo {
			t.Errorf("4 console.log calls should be one info, got %v", issues)
		}
	})

	t.Run("mismatched braces", func(t *testing.T) {
		issues := AnalyzeFile("a.js", "function f() { if (x) { }")
		found := false
		for _, issue := range issues {
			if issue.Severity == models.SeverityError {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a brace error, got %v", issues)
		}
	})

	t.Run("var usage", func(t *testing.T) {
		issues := AnalyzeFile("a.js", "var x = 1;\n")
		if got := severities(issues); len(got) != 1 || got[0] != models.SeverityWarning {
			t.Errorf("expected one warning for var, got %v", issues)
		}
		// let/const pass; "variable" must not trip the substring check
		if issues := AnalyzeFile("b.js", "let variable = 1;\n"); len(issues) != 0 {
			t.Errorf("let should pass, got %v", issues)
		}
	})
}

func TestScanCSS(t *testing.T) {
	if issues := AnalyzeFile("s.css", "body { margin: 0; }"); len(issues) != 0 {
		t.Errorf("balanced css should pass, got %v", issues)
	}
	issues := AnalyzeFile("s.css", "body { margin: 0;")
	if len(issues) != 1 || issues[0].Severity != models.SeverityError {
		t.Errorf("expected one brace error, got %v", issues)
	}
}

func TestAnalyzeSkipsUnknownExtensions(t *testing.T) {
	entries := []models.ZipEntry{
		{Name: "notes.txt", Content: "var x { { {"},
		{Name: "img", IsFolder: true},
		{Name: "a.js", Content: "var x = 1;"},
	}
	issues := Analyze(entries)
	if len(issues) != 1 || issues[0].File != "a.js" {
		t.Errorf("only .js file should be scanned, got %v", issues)
	}
}
