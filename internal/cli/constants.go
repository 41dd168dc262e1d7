package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// RequirementsFileName is the default name of an exported requirements file.
	RequirementsFileName = "kagglehub_requirements.yaml"
)
