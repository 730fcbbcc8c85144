package driven

// SummaryRenderer writes generated summaries as paginated documents.
type SummaryRenderer interface {
	// Render formats content and writes it to a path derived from
	// sourceFilename, replacing any earlier summary of the same source.
	// Returns the written file's name within the downloads folder.
	Render(content, sourceFilename string) (string, error)
}
