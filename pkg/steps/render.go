package steps

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// render executes text as a template against data. Strings without
// actions are returned unchanged.
func render(name, text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderAll(name string, texts []string, data map[string]any) ([]string, error) {
	out := make([]string, 0, len(texts))
	for i, t := range texts {
		s, err := render(fmt.Sprintf("%s[%d]", name, i), t, data)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func renderMap(name string, m map[string]string, data map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		s, err := render(name+"."+k, m[k], data)
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}
