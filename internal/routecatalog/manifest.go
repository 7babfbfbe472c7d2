package routecatalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// manifest is the declarative alternative to scanning route source:
//
//	permissions:
//	  - method: GET
//	    path: /:id
//	    name: getById
type manifest struct {
	Permissions []Entry `yaml:"permissions"`
}

var validate = validator.New()

// ParseManifest decodes a YAML manifest. Entries failing validation are
// skipped with a warning; a document that is not valid YAML is an error.
func ParseManifest(resource string, data []byte) ([]Entry, []Warning, error) {
	var doc manifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("routecatalog: parse manifest %s: %w", resource, err)
	}
	var (
		entries  []Entry
		warnings []Warning
	)
	for i, e := range doc.Permissions {
		e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
		e.Slug = normalizePath(e.Slug)
		e.Name = strings.TrimSpace(e.Name)
		if err := validate.Struct(e); err != nil {
			warnings = append(warnings, Warning{
				Resource: resource,
				Line:     i + 1,
				Text:     e.Method + " " + e.Slug,
				Reason:   describeValidation(err),
			})
			continue
		}
		entries = append(entries, e)
	}
	return Dedupe(entries), warnings, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid manifest entry: " + strings.Join(parts, ", ")
}
