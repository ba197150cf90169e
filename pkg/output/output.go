package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jwalton/go-supportscolor"

	"github.com/vertti/dripcheck/pkg/check"
)

var (
	green = "\033[32m"
	red   = "\033[31m"
	cyan  = "\033[36m"
	dim   = "\033[2m"
	bold  = "\033[1m"
	reset = "\033[0m"
)

const indent = "        "

func init() {
	if !supportscolor.Stdout().SupportsColor {
		green, red, cyan, dim, bold, reset = "", "", "", "", "", ""
	}
}

// PrintResult outputs a check result with colored status. Details are only
// printed in verbose mode, one line each, skipping blank lines.
func PrintResult(w io.Writer, r check.Result, verbose bool) {
	color := green
	if !r.OK() {
		color = red
	}

	fmt.Fprintf(w, "  %s[%s]%s %s%s (%dms)%s\n", color, r.Status, reset, label(r), dim, r.Duration.Milliseconds(), reset)

	if r.Message != "" {
		fmt.Fprintf(w, "%s%s\n", indent, r.Message)
	}
	if !verbose {
		return
	}
	for _, d := range r.Details {
		for _, line := range strings.Split(d, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintf(w, "%s%s%s%s\n", indent, dim, line, reset)
		}
	}
}

func label(r check.Result) string {
	if r.Number > 0 {
		return fmt.Sprintf("%sScenario %d%s: %s", bold, r.Number, reset, r.Name)
	}
	return r.Name
}

// PrintResults prints every result, separated by blank lines when sep is set.
func PrintResults(w io.Writer, results []check.Result, verbose, sep bool) {
	for i, r := range results {
		PrintResult(w, r, verbose)
		if sep && i+1 < len(results) {
			fmt.Fprintln(w)
		}
	}
}

// PrintSummary prints the rule and the overall verdict. noun is the plural
// of what was run, e.g. "checks" or "scenarios".
func PrintSummary(w io.Writer, results []check.Result, noun string, width int) {
	passed, failed := check.Summary(results)

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", width))
	if failed == 0 {
		fmt.Fprintf(w, "%s%sAll %d %s passed.%s\n", green, bold, passed, noun, reset)
	} else {
		fmt.Fprintf(w, "%s%s%d of %d %s failed.%s\n", red, bold, failed, passed+failed, noun, reset)
	}
	fmt.Fprintln(w)
}

// PrintBanner prints the title block shown before any results.
func PrintBanner(w io.Writer, title, subtitle string, width int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s%s%s\n", cyan, bold, title, reset)
	if subtitle != "" {
		fmt.Fprintln(w, subtitle)
	}
	fmt.Fprintln(w, strings.Repeat("=", width))
}

// Dimf prints a dimmed, two-space indented line.
func Dimf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "  %s%s%s\n", dim, fmt.Sprintf(format, args...), reset)
}

// Errorf prints a red line, typically to stderr.
func Errorf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s%s%s\n", red, fmt.Sprintf(format, args...), reset)
}

type jsonResult struct {
	Number     int      `json:"number,omitempty"`
	Name       string   `json:"name"`
	Success    bool     `json:"success"`
	DurationMs int64    `json:"durationMs"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type jsonSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

type jsonReport struct {
	Results []jsonResult `json:"results"`
	Summary jsonSummary  `json:"summary"`
}

// PrintJSON writes the whole report as one indented JSON document.
func PrintJSON(w io.Writer, results []check.Result) error {
	report := jsonReport{Results: make([]jsonResult, 0, len(results))}
	for _, r := range results {
		jr := jsonResult{
			Number:     r.Number,
			Name:       r.Name,
			Success:    r.OK(),
			DurationMs: r.Duration.Milliseconds(),
			Message:    r.Message,
			Details:    r.Details,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		report.Results = append(report.Results, jr)
	}
	passed, failed := check.Summary(results)
	report.Summary = jsonSummary{Total: passed + failed, Passed: passed, Failed: failed}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
