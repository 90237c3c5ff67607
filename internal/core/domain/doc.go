// Package domain defines the core business entities for reportgen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - EvidenceChunk: A retrieved passage grounding report narrative
//   - RollingMemory: Compacted carry-forward state within one run
//   - SectionDirective: One configured report section
//   - ReportRun: The persisted artifact of one generation run
//   - Finding: One evaluated regulatory micro-requirement
//   - ReportEvent: One incremental progress event of a streaming run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
