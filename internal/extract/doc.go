// Package extract turns crawled pages and their evidence bundle into the
// four clinic fields: specialty, modalities, location, and clinic size.
//
// The package defines the Extractor interface and one implementation, a
// deterministic heuristic extractor that works entirely from the
// evidence bundle. Keeping extraction behind an interface lets the
// pipeline swap in a remote extraction service without touching the
// control loop.
package extract
