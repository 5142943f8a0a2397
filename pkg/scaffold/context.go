package scaffold

import (
	"fmt"
	"maps"
	"os"

	"github.com/systemstart/create-nextstream-app/pkg/layout"
	"gopkg.in/yaml.v3"
)

// LoadContextFile reads a YAML file and returns it as a map.
func LoadContextFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var ctx map[string]any
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}

	if ctx == nil {
		ctx = make(map[string]any)
	}

	return ctx, nil
}

// MergeContext performs a shallow merge of override over base.
// Override keys replace base keys at the top level.
func MergeContext(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}

// templateData builds the data recipe strings are rendered against. The
// project keys always win over user-supplied context.
func templateData(name string, l *layout.Layout, recipeContext, userContext map[string]any) map[string]any {
	data := MergeContext(recipeContext, userContext)
	data["project"] = name
	data["root"] = l.Root()
	data["dirs"] = l.SubProjects()
	return data
}
