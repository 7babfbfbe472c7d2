package routecatalog

import (
	"regexp"
	"strings"
)

var (
	// registrationRe matches the start of a registration call and captures
	// the verb and everything after the opening parenthesis.
	registrationRe = regexp.MustCompile(`^\s*[A-Za-z_$][\w$]*\.(?i:(get|post|put|patch|delete))\s*\((.*)$`)
	pathArgRe      = regexp.MustCompile("^\\s*(['\"`])([^'\"`]*)['\"`]")
	handlerArgRe   = regexp.MustCompile(`,\s*(?:[A-Za-z_$][\w$]*\.)*([A-Za-z_$][\w$]*)\s*\)\s*;?\s*(?://.*)?$`)
	chiParamRe     = regexp.MustCompile(`\{([A-Za-z_][\w]*)(?::[^}]*)?\}`)
)

const (
	reasonMissingPath    = "registration without a path literal"
	reasonMissingHandler = "registration without a trailing handler identifier"
)

// ScanLines extracts registrations from the raw text of one route file.
// Lines that are not registrations are ignored; lines that look like one but
// are missing a token are skipped and reported as warnings.
func ScanLines(resource, text string) ([]Entry, []Warning) {
	var (
		entries  []Entry
		warnings []Warning
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		m := registrationRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		method := strings.ToUpper(m[1])
		args := m[2]

		pm := pathArgRe.FindStringSubmatch(args)
		if pm == nil {
			warnings = append(warnings, Warning{Resource: resource, Line: i + 1, Text: strings.TrimSpace(line), Reason: reasonMissingPath})
			continue
		}
		hm := handlerArgRe.FindStringSubmatch(args[len(pm[0]):])
		if hm == nil {
			warnings = append(warnings, Warning{Resource: resource, Line: i + 1, Text: strings.TrimSpace(line), Reason: reasonMissingHandler})
			continue
		}
		entries = append(entries, Entry{
			Name:   hm[1],
			Slug:   normalizePath(pm[2]),
			Method: method,
		})
	}
	return Dedupe(entries), warnings
}

// normalizePath rewrites chi style {id} placeholders to :id.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	return chiParamRe.ReplaceAllString(path, ":$1")
}
