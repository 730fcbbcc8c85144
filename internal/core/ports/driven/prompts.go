package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations fall back to an embedded default when one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptRAGAnswer is the instruction block sent with every question.
	// The template expects one %s placeholder for the available file list.
	PromptRAGAnswer = "rag_answer"
)
