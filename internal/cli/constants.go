package cli

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// TabWidth is the width of tabs in formatted output.
const TabWidth = 2
