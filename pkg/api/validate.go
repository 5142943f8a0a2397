package api

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var validStepTypes = map[string]bool{
	StepTypeClone:    true,
	StepTypeCopy:     true,
	StepTypeCommand:  true,
	StepTypeEnvFile:  true,
	StepTypeTemplate: true,
	StepTypeGenerate: true,
}

// Validate checks the recipe for errors.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("recipe has no steps")
	}

	for key, rel := range r.SubProjects {
		if key == "" {
			return fmt.Errorf("sub-project key is required")
		}
		if rel == "" {
			return fmt.Errorf("sub-project %q: path is required", key)
		}
	}

	names := make(map[string]int)

	for i, step := range r.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if !validStepTypes[step.Type] {
			valid := make([]string, 0, len(validStepTypes))
			for k := range validStepTypes {
				valid = append(valid, k)
			}
			slices.Sort(valid)
			return fmt.Errorf("step %q: unknown type %q (valid: %s)", step.Name, step.Type, strings.Join(valid, ", "))
		}

		if step.Timeout != "" {
			if d, err := time.ParseDuration(step.Timeout); err != nil || d <= 0 {
				return fmt.Errorf("step %q: timeout %q is not a positive duration", step.Name, step.Timeout)
			}
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return nil
}

func validateStepConfig(step StepConfig) error {
	switch step.Type {
	case StepTypeClone:
		return validateCloneConfig(step)
	case StepTypeCopy:
		return validateCopyConfig(step)
	case StepTypeCommand:
		return validateCommandConfig(step)
	case StepTypeEnvFile:
		return validateEnvFileConfig(step)
	case StepTypeTemplate:
		return validateTemplateConfig(step)
	case StepTypeGenerate:
		return validateGenerateConfig(step)
	}
	return nil
}

func validateCloneConfig(step StepConfig) error {
	if step.Clone == nil {
		return fmt.Errorf("clone config is required")
	}
	if step.Clone.Repository == "" {
		return fmt.Errorf("clone.repository is required")
	}
	if step.Clone.Into == "" {
		return fmt.Errorf("clone.into is required")
	}
	if step.Clone.Depth < 0 {
		return fmt.Errorf("clone.depth must not be negative")
	}
	return nil
}

func validateCopyConfig(step StepConfig) error {
	if step.Copy == nil {
		return fmt.Errorf("copy config is required")
	}
	if step.Copy.Source == "" || step.Copy.Source == BundledPrefix {
		return fmt.Errorf("copy.source is required")
	}
	if step.Copy.Into == "" {
		return fmt.Errorf("copy.into is required")
	}
	return nil
}

func validateCommandConfig(step StepConfig) error {
	if step.Command == nil {
		return fmt.Errorf("command config is required")
	}
	if len(step.Command.Exec) == 0 || step.Command.Exec[0] == "" {
		return fmt.Errorf("command.exec is required")
	}
	return nil
}

func validateEnvFileConfig(step StepConfig) error {
	if step.EnvFile == nil {
		return fmt.Errorf("envfile config is required")
	}
	if step.EnvFile.From == "" {
		return fmt.Errorf("envfile.from is required")
	}
	if step.EnvFile.To == "" {
		return fmt.Errorf("envfile.to is required")
	}
	return nil
}

func validateTemplateConfig(step StepConfig) error {
	if step.Template == nil {
		return fmt.Errorf("template config is required")
	}
	if len(step.Template.Include) == 0 {
		return fmt.Errorf("template.include is required")
	}
	return nil
}

func validateGenerateConfig(step StepConfig) error {
	if step.Generate == nil {
		return fmt.Errorf("generate config is required")
	}
	if step.Generate.Output == "" {
		return fmt.Errorf("generate.output is required")
	}
	if step.Generate.Template == "" {
		return fmt.Errorf("generate.template is required")
	}
	return nil
}
