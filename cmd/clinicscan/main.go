// Package main provides the entry point for the clinicscan CLI.
//
// Clinicscan discovers and distills the key facts of clinic and small
// business websites: specialty, treatment modalities, locations, and
// practice size.
//
// Usage:
//
//	clinicscan scan <url>
//	clinicscan scan --list <file>
//
// See --help for all available options.
package main

// main is the entry point for clinicscan.
func main() {
	Execute()
}
