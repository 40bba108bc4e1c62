// Package verify checks that a built site is ready to deploy.
package verify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qtpi-bonding/folio/internal/config"
)

// ErrVerificationFailed is returned when at least one check fails.
var ErrVerificationFailed = errors.New("deployment verification failed")

// Status is the outcome of one check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is a single verification result.
type Check struct {
	Group   string
	Target  string
	Status  Status
	Message string
}

// Report collects every check run against one output directory.
type Report struct {
	Dir    string
	Checks []Check
}

func (r *Report) add(group, target string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{
		Group:   group,
		Target:  target,
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	})
}

// Failures returns the failed checks.
func (r *Report) Failures() []Check { return r.filter(StatusFail) }

// Warnings returns the checks that passed with a warning.
func (r *Report) Warnings() []Check { return r.filter(StatusWarn) }

func (r *Report) filter(s Status) []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Status == s {
			out = append(out, c)
		}
	}
	return out
}

// Err returns ErrVerificationFailed wrapped with the failure count, or nil.
func (r *Report) Err() error {
	if n := len(r.Failures()); n > 0 {
		return fmt.Errorf("%w: %d check(s) failed", ErrVerificationFailed, n)
	}
	return nil
}

const (
	groupFiles   = "files"
	groupSizes   = "sizes"
	groupContent = "content"
)

// Run verifies dir against cfg. Every check runs; a failure does not stop
// the ones after it.
func Run(dir string, cfg config.VerifyConfig) *Report {
	r := &Report{Dir: dir}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		r.add(groupFiles, dir, StatusFail, "Build directory %s does not exist. Run 'folio build' first.", dir)
		return r
	}

	for _, rel := range append(append([]string{}, cfg.RequiredFiles...), cfg.RequiredPages...) {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			r.add(groupFiles, rel, StatusFail, "Required file missing: %s", rel)
			continue
		}
		r.add(groupFiles, rel, StatusPass, "%s", rel)
	}

	budgets := make([]string, 0, len(cfg.SizeBudgetsKB))
	for rel := range cfg.SizeBudgetsKB {
		budgets = append(budgets, rel)
	}
	sort.Strings(budgets)
	for _, rel := range budgets {
		checkSize(r, dir, rel, cfg.SizeBudgetsKB[rel])
	}

	if len(cfg.IndexMarkers) > 0 {
		checkMarkers(r, dir, "index.html", cfg.IndexMarkers)
	}
	return r
}

// checkSize warns when rel is larger than maxKB. A missing file is already
// reported by the required-file checks, so it is skipped here.
func checkSize(r *Report, dir, rel string, maxKB int) {
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return
	}
	sizeKB := float64(info.Size()) / 1024
	if sizeKB > float64(maxKB) {
		r.add(groupSizes, rel, StatusWarn, "%s is %.1fKB (recommended: <%dKB)", rel, sizeKB, maxKB)
		return
	}
	r.add(groupSizes, rel, StatusPass, "%s (%.1fKB)", rel, sizeKB)
}

func checkMarkers(r *Report, dir, rel string, markers []string) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		r.add(groupContent, rel, StatusFail, "Cannot read %s: %v", rel, err)
		return
	}
	html := string(data)
	missing := 0
	for _, m := range markers {
		if !strings.Contains(html, m) {
			r.add(groupContent, rel, StatusFail, "Missing required content in %s: %s", rel, m)
			missing++
		}
	}
	if missing == 0 {
		r.add(groupContent, rel, StatusPass, "%s content validation passed", rel)
	}
}

var groupTitles = []struct{ group, title string }{
	{groupFiles, "Checking required files..."},
	{groupSizes, "Checking file sizes..."},
	{groupContent, "Checking HTML content..."},
}

// Print writes the report grouped by check kind and returns whether
// verification passed.
func Print(w io.Writer, r *Report) bool {
	fmt.Fprintf(w, "Verifying deployment build in %s\n", r.Dir)
	for _, g := range groupTitles {
		var checks []Check
		for _, c := range r.Checks {
			if c.Group == g.group {
				checks = append(checks, c)
			}
		}
		if len(checks) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", g.title)
		for _, c := range checks {
			fmt.Fprintf(w, "%s %s\n", statusMark(c.Status), c.Message)
		}
	}

	if failures := r.Failures(); len(failures) > 0 {
		fmt.Fprintf(w, "\n✗ Deployment verification failed with %d error(s).\n", len(failures))
		return false
	}
	fmt.Fprintln(w, "\n✓ Deployment verification passed!")
	return true
}

func statusMark(s Status) string {
	switch s {
	case StatusFail:
		return "✗"
	case StatusWarn:
		return "⚠"
	default:
		return "✓"
	}
}
