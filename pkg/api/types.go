package api

const (
	StepTypeClone    = "clone"
	StepTypeCopy     = "copy"
	StepTypeCommand  = "command"
	StepTypeEnvFile  = "envfile"
	StepTypeTemplate = "template"
	StepTypeGenerate = "generate"

	// BundledPrefix marks a copy source inside the embedded template tree.
	BundledPrefix = "bundled:"
)

// Recipe is the scaffold definition: the sub-projects a new project
// contains and the ordered steps that populate them.
type Recipe struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	SubProjects map[string]string `yaml:"subProjects"`
	Context     map[string]any    `yaml:"context"`
	Steps       []StepConfig      `yaml:"steps"`

	// Set by the loader, not from YAML. Empty for the embedded default.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a recipe.
type StepConfig struct {
	Name     string          `yaml:"name"`
	Type     string          `yaml:"type"`
	Message  string          `yaml:"message"`
	Dir      string          `yaml:"dir"` // sub-project key or root-relative path; empty is the root
	Timeout  string          `yaml:"timeout"`
	Clone    *CloneConfig    `yaml:"clone,omitempty"`
	Copy     *CopyConfig     `yaml:"copy,omitempty"`
	Command  *CommandConfig  `yaml:"command,omitempty"`
	EnvFile  *EnvFileConfig  `yaml:"envfile,omitempty"`
	Template *TemplateConfig `yaml:"template,omitempty"`
	Generate *GenerateConfig `yaml:"generate,omitempty"`
}

// CloneConfig configures the clone step.
type CloneConfig struct {
	Repository string `yaml:"repository"`
	Into       string `yaml:"into"`
	Ref        string `yaml:"ref"`
	Depth      int    `yaml:"depth"`
	KeepVCS    bool   `yaml:"keepVCS"`
}

// CopyConfig configures the copy step.
type CopyConfig struct {
	Source  string   `yaml:"source"`
	Into    string   `yaml:"into"`
	Exclude []string `yaml:"exclude"`
	Overlay bool     `yaml:"overlay"`
}

// CommandConfig configures the command step.
type CommandConfig struct {
	Exec []string          `yaml:"exec"`
	Env  map[string]string `yaml:"env"`
}

// EnvFileConfig configures the envfile step.
type EnvFileConfig struct {
	From string            `yaml:"from"`
	To   string            `yaml:"to"`
	Set  map[string]string `yaml:"set"`
}

// TemplateConfig configures the template step, which renders matching
// files under the step directory in place.
type TemplateConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// GenerateConfig configures the generate step.
type GenerateConfig struct {
	Output   string `yaml:"output"`
	Template string `yaml:"template"`
}
