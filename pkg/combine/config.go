// File: pkg/combine/config.go
package combine

// Arguments holds the configuration options for one documentation run.
type Arguments struct {
	Directory        string   // Folder to scan.
	Output           string   // Destination artifact; its extension selects the assembler.
	IgnoreFile       string   // Ignore file name relative to Directory. Defaults to ignore.DefaultFileName.
	GlobalIgnoreFile string   // Optional ignore file applied before the local one.
	IgnorePatterns   []string // Additional ignore patterns provided via command-line arguments.
	TextExtensions   []string // Extensions added to the plain-text allow-list.
}
