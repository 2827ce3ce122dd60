// Package verify runs structural checks over emitted fabrication files.
//
// The checks are deliberately shallow: they parse only the framing a
// fabrication house's intake tooling parses (format declaration, aperture
// declarations, terminators) and confirm internal consistency. They are a
// tripwire against emitter regressions, not a Gerber validator.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lwerner/copperline/pkg/errors"
)

// Report is the verification outcome for one file.
type Report struct {
	Name     string
	Problems []string
}

// OK reports whether the file passed every check.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) addf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

var (
	apertureDeclRe = regexp.MustCompile(`(?m)^%ADD(\d+)[RC],`)
	apertureUseRe  = regexp.MustCompile(`(?m)^D(\d+)\*$`)
)

// Gerber checks one RS-274X file: the fixed-point format declaration must
// open the file, the M02 terminator must close it, and every selected
// aperture code must be declared in the same file.
func Gerber(name string, data []byte) Report {
	r := Report{Name: name}
	s := string(data)

	if !strings.HasPrefix(s, "%FSLAX36Y36*%") {
		r.addf("missing %%FSLAX36Y36 format declaration at start of file")
	}
	if !strings.Contains(s, "%MOMM*%") {
		r.addf("missing metric unit declaration")
	}
	if !strings.HasSuffix(strings.TrimRight(s, "\n"), "M02*") {
		r.addf("missing M02 terminator at end of file")
	}

	declared := map[string]bool{}
	for _, m := range apertureDeclRe.FindAllStringSubmatch(s, -1) {
		if declared[m[1]] {
			r.addf("aperture D%s declared more than once", m[1])
		}
		declared[m[1]] = true
	}
	for _, m := range apertureUseRe.FindAllStringSubmatch(s, -1) {
		if !declared[m[1]] {
			r.addf("aperture D%s selected but never declared", m[1])
		}
	}
	return r
}

// Drill checks one Excellon file: M48 header, end-of-header marker, M30
// terminator, and that every tool selected in the body appears in the
// header's tool table.
func Drill(name string, data []byte) Report {
	r := Report{Name: name}
	s := string(data)

	if !strings.HasPrefix(s, "M48") {
		r.addf("missing M48 header at start of file")
	}
	if !strings.Contains(s, "\n%\n") {
		r.addf("missing end-of-header marker")
	}
	if !strings.HasSuffix(strings.TrimRight(s, "\n"), "M30") {
		r.addf("missing M30 terminator at end of file")
	}

	defined := map[string]bool{}
	for _, m := range regexp.MustCompile(`(?m)^T(\d+)C`).FindAllStringSubmatch(s, -1) {
		defined[m[1]] = true
	}
	for _, m := range regexp.MustCompile(`(?m)^T(\d+)$`).FindAllStringSubmatch(s, -1) {
		if !defined[m[1]] {
			r.addf("tool T%s selected but not defined in header", m[1])
		}
	}
	return r
}

// File dispatches on the file's extension: .DRL is checked as a drill
// file, everything else as Gerber.
func File(name string, data []byte) Report {
	if strings.HasSuffix(strings.ToUpper(name), ".DRL") {
		return Drill(name, data)
	}
	return Gerber(name, data)
}

// All verifies a whole file set and returns one report per file, plus an
// error when any file failed.
func All(files map[string][]byte, order []string) ([]Report, error) {
	reports := make([]Report, 0, len(order))
	failed := 0
	for _, name := range order {
		rep := File(name, files[name])
		if !rep.OK() {
			failed++
		}
		reports = append(reports, rep)
	}
	if failed > 0 {
		return reports, errors.New(errors.ErrCodeMalformedFile,
			"%d of %d files failed verification", failed, len(order))
	}
	return reports, nil
}
