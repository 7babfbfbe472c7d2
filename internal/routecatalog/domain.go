// Package routecatalog derives permission atoms from route-registration
// sources. Two source kinds are understood: legacy route files, scanned line
// by line for calls of the form word.verb('<path>', ..., handler), and YAML
// manifests listing {method, path, name} entries explicitly.
package routecatalog

import "fmt"

// Entry is one extracted (method, path, handler) triple.
type Entry struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Slug   string `json:"slug" yaml:"path" validate:"required,startswith=/"`
	Method string `json:"method" yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
}

// Resource groups the entries extracted from one source unit. Slug is the
// file name without its extension.
type Resource struct {
	Slug    string
	Entries []Entry
}

// Warning records a line or file the extractor skipped.
type Warning struct {
	Resource string
	Line     int
	Text     string
	Reason   string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s (%q)", w.Resource, w.Line, w.Reason, w.Text)
	}
	return fmt.Sprintf("%s: %s", w.Resource, w.Reason)
}

// Methods lists the HTTP verbs a registration may use.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// Dedupe drops repeated (method, path) pairs in place, keeping the first.
func Dedupe(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := e.Method + " " + e.Slug
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
