// Package domain defines the core business entities for PDF-IQ.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded PDF held in the file store
//   - Page: A unit of text extracted from a Document
//   - Chunk: A retrievable span of text with source metadata
//   - Turn / Session: Per-session conversation memory
//   - FileOperations: File actions requested by the model's reply
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
