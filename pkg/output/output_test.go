package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vertti/dripcheck/pkg/check"
)

// noColor disables color codes for the duration of the test.
func noColor(t *testing.T) {
	t.Helper()
	oldGreen, oldRed, oldCyan, oldDim, oldBold, oldReset := green, red, cyan, dim, bold, reset
	green, red, cyan, dim, bold, reset = "", "", "", "", "", ""
	t.Cleanup(func() {
		green, red, cyan, dim, bold, reset = oldGreen, oldRed, oldCyan, oldDim, oldBold, oldReset
	})
}

func TestPrintResultPass(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer

	PrintResult(&buf, check.Result{
		Name:     "Connectivity",
		Status:   check.StatusPass,
		Duration: 42 * time.Millisecond,
		Message:  "API healthy (40ms latency)",
		Details:  []string{"API version: 2.1.0"},
	}, false)

	want := "  [PASS] Connectivity (42ms)\n" + indent + "API healthy (40ms latency)\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintResult() =\n%q\nwant\n%q", got, want)
	}
}

func TestPrintResultScenarioLabel(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer

	PrintResult(&buf, check.Result{
		Number:  8,
		Name:    "Idempotency / Retry Safety",
		Status:  check.StatusFail,
		Message: "Sent same key twice: IDs DIFFER (dedup BROKEN!)",
	}, false)

	got := buf.String()
	if !strings.HasPrefix(got, "  [FAIL] Scenario 8: Idempotency / Retry Safety (0ms)\n") {
		t.Errorf("unexpected header line: %q", got)
	}
}

func TestPrintResultVerbose(t *testing.T) {
	noColor(t)

	r := check.Result{
		Name:    "Record Run",
		Status:  check.StatusPass,
		Message: "ok",
		Details: []string{"Run ID: run_1", "", "line one\n\nline two"},
	}

	var quiet bytes.Buffer
	PrintResult(&quiet, r, false)
	if strings.Contains(quiet.String(), "Run ID") {
		t.Errorf("details printed without verbose: %q", quiet.String())
	}

	var loud bytes.Buffer
	PrintResult(&loud, r, true)
	got := loud.String()
	for _, want := range []string{indent + "Run ID: run_1\n", indent + "line one\n", indent + "line two\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("verbose output missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "\n"); n != 5 {
		t.Errorf("verbose output has %d lines, want 5 (blank details skipped):\n%s", n, got)
	}
}

func TestPrintResultsSeparator(t *testing.T) {
	noColor(t)
	results := []check.Result{
		{Name: "a", Status: check.StatusPass},
		{Name: "b", Status: check.StatusPass},
	}

	var plain, sep bytes.Buffer
	PrintResults(&plain, results, false, false)
	PrintResults(&sep, results, false, true)

	if strings.Contains(plain.String(), "\n\n") {
		t.Errorf("unexpected blank line: %q", plain.String())
	}
	if strings.Count(sep.String(), "\n\n") != 1 {
		t.Errorf("want exactly one separator: %q", sep.String())
	}
}

func TestPrintSummary(t *testing.T) {
	noColor(t)

	tests := []struct {
		name    string
		results []check.Result
		want    string
	}{
		{
			name:    "all passed",
			results: []check.Result{{Status: check.StatusPass}, {Status: check.StatusPass}},
			want:    "All 2 checks passed.",
		},
		{
			name:    "some failed",
			results: []check.Result{{Status: check.StatusPass}, {Status: check.StatusFail}, {Status: check.StatusFail}},
			want:    "2 of 3 checks failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintSummary(&buf, tt.results, "checks", 42)
			got := buf.String()
			if !strings.Contains(got, strings.Repeat("=", 42)+"\n") {
				t.Errorf("missing rule: %q", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("PrintSummary() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestPrintBanner(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer

	PrintBanner(&buf, "Drip ML Training Integration Tests v1.2.0", "Simulating workflows", 59)

	want := "\nDrip ML Training Integration Tests v1.2.0\nSimulating workflows\n" + strings.Repeat("=", 59) + "\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintBanner() = %q, want %q", got, want)
	}
}

func TestPrintJSON(t *testing.T) {
	results := []check.Result{
		{Name: "Connectivity", Status: check.StatusPass, Duration: 15 * time.Millisecond, Message: "ok"},
		{Number: 3, Name: "Per-User", Status: check.StatusFail, Message: "Failed", Err: errors.New("HTTP 500: boom"), Details: []string{"d"}},
	}

	var buf bytes.Buffer
	if err := PrintJSON(&buf, results); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Summary != (jsonSummary{Total: 2, Passed: 1, Failed: 1}) {
		t.Errorf("Summary = %+v", got.Summary)
	}
	if len(got.Results) != 2 {
		t.Fatalf("got %d results", len(got.Results))
	}
	if !got.Results[0].Success || got.Results[0].DurationMs != 15 {
		t.Errorf("first result = %+v", got.Results[0])
	}
	if got.Results[1].Number != 3 || got.Results[1].Error != "HTTP 500: boom" {
		t.Errorf("second result = %+v", got.Results[1])
	}
}

func TestPrintJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, nil); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("empty results should encode as []: %s", buf.String())
	}
}
