package grader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// SuccessMessage is the diagnostic of a passing run.
	SuccessMessage = "✅ All tests passed!"

	errorDetailsHeader = "⚠️ Error details:\n"
	failMarker         = "FAIL:"
	assertionMarker    = "AssertionError:"
)

// ReportEnv names the environment variable holding the path where a test
// script may write a JSON result report.
const ReportEnv = "DRILL_REPORT"

// Case statuses in a result report.
const (
	CasePass  = "pass"
	CaseFail  = "fail"
	CaseError = "error"
)

// CaseResult is one test case outcome from a result report.
type CaseResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Failed reports whether the case did not pass.
func (c CaseResult) Failed() bool {
	return c.Status == CaseFail || c.Status == CaseError
}

type resultReport struct {
	Cases []CaseResult `json:"cases"`
}

// readReport loads the result report at path. A missing file means the
// test script does not report; a malformed one is returned as an error.
func readReport(path string) ([]CaseResult, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read report: %w", err)
	}

	var rep resultReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, false, fmt.Errorf("parse report: %w", err)
	}
	return rep.Cases, true, nil
}

// diagnose builds the diagnostic text of a failed run. Failing cases from a
// result report take precedence; otherwise stderr is scanned for unittest
// markers; otherwise the trailing stderr lines are shown verbatim.
func diagnose(stderr string, cases []CaseResult, fallbackLines int) string {
	if msg := formatCases(cases); msg != "" {
		return msg
	}
	if msg := scanStderr(stderr); msg != "" {
		return msg
	}
	return errorDetailsHeader + tailLines(stderr, fallbackLines)
}

func formatCases(cases []CaseResult) string {
	var out []string
	for _, c := range cases {
		if !c.Failed() {
			continue
		}
		out = append(out, failedCaseEntry(c.Name))
		if c.Message != "" {
			out = append(out, mismatchEntry(c.Message))
		}
	}
	return strings.Join(out, "\n")
}

// scanStderr recognizes "FAIL: <case> ..." and "AssertionError: <text>"
// lines. Each recognized line contributes one entry.
func scanStderr(stderr string) string {
	var out []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, failMarker):
			out = append(out, failedCaseEntry(caseName(line)))
		case strings.HasPrefix(line, assertionMarker):
			diff := strings.TrimSpace(strings.TrimPrefix(line, assertionMarker))
			out = append(out, mismatchEntry(diff))
		}
	}
	return strings.Join(out, "\n")
}

// caseName returns the identifier after the FAIL marker.
func caseName(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, failMarker))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func failedCaseEntry(name string) string {
	return "\n🔻 FAILED TEST CASE: " + name
}

func mismatchEntry(diff string) string {
	return "   ⚠️  Mismatch: " + diff
}

// tailLines returns the last n lines of s, ignoring one trailing newline.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
