package api

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRecipe []byte

// LoadRecipe reads a recipe file, sets Dir/FilePath, and validates it.
func LoadRecipe(filename string) (*Recipe, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}

	r, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", filename, err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	r.FilePath = absPath
	r.Dir = filepath.Dir(absPath)

	return r, nil
}

// ParseRecipe unmarshals and validates a recipe document.
func ParseRecipe(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating recipe: %w", err)
	}

	return &r, nil
}

// DefaultRecipe returns the built-in Laravel + Next.js recipe.
func DefaultRecipe() (*Recipe, error) {
	return ParseRecipe(defaultRecipe)
}
