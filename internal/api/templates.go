package api

import (
	"encoding/json"
	"html/template"
	"io/fs"
	"net/url"
	"strings"

	"github.com/vytor/tourneydesk/web"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LoadTemplates parses the embedded layouts, pages and partials.
func LoadTemplates() (*template.Template, error) {
	return parseTemplates(web.FS)
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"min": func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},
		"max": func(a, b int) int {
			if a > b {
				return a
			}
			return b
		},
		"lower": strings.ToLower,
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		// getFilter extracts a single value from url.Values
		"getFilter": func(values url.Values, key string) string {
			if values == nil {
				return ""
			}
			return values.Get(key)
		},
		"urlquery": url.QueryEscape,
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}

	t := template.New("base").Funcs(funcs)
	patterns := []string{
		"templates/layouts/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	}
	for _, p := range patterns {
		if matches, _ := fs.Glob(fsys, p); len(matches) == 0 {
			continue
		}
		if _, err := t.ParseFS(fsys, p); err != nil {
			return nil, err
		}
	}
	return t, nil
}
