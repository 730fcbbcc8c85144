// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - FileStore: Upload and summary directories
//   - TextExtractor: Turns a PDF into per-page text
//   - PostProcessorPipeline: Splits pages into chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndexFactory / VectorIndex: Similarity search over chunk embeddings
//   - LLMService: Generates the structured reply
//   - ConversationStore: Per-session turn history
//   - SummaryRenderer: Writes generated summary PDFs
//   - ConfigStore / PromptStore: User configuration and prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
