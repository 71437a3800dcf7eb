package config

// YAMLConfig mirrors linefit.yaml. Pointers distinguish "absent" from an
// explicit zero so partial files layer cleanly over the defaults.
type YAMLConfig struct {
	Linefit YAMLLinefit `yaml:"linefit"`
}

type YAMLLinefit struct {
	Training YAMLTraining `yaml:"training"`
	Paths    YAMLPaths    `yaml:"paths"`
}

type YAMLTraining struct {
	Epochs       *int     `yaml:"epochs"`
	LearningRate *float64 `yaml:"learning_rate"`
	BatchSize    *int     `yaml:"batch_size"`
	YieldMS      *int     `yaml:"yield_ms"`
}

type YAMLPaths struct {
	DataDir    string `yaml:"data_dir"`
	ExportsDir string `yaml:"exports_dir"`
	ExportName string `yaml:"export_name"`
}
