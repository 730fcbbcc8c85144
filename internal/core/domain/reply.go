package domain

// Fixed user-facing messages.
const (
	// MessageEmptyQuestion is returned when the question is blank.
	MessageEmptyQuestion = "Please enter a question."

	// MessageNoDocuments is returned when the index cannot be built.
	MessageNoDocuments = "Please upload and process at least one PDF file first."

	// MessagePipelineError replaces any retrieval or generation failure.
	MessagePipelineError = "Sorry, an error occurred while processing your request."

	// MessageNoAnswer is used when the reply carries no answer text.
	MessageNoAnswer = "Sorry, I could not find a relevant answer in your documents."
)

// FileOperations are the file actions requested by a model reply.
// The zero value means no operation was requested.
type FileOperations struct {
	DownloadOriginal bool   `json:"download_original"`
	DownloadSummary  bool   `json:"download_summary"`
	Filename         string `json:"filename,omitempty"`
	SummaryContent   string `json:"summary_content,omitempty"`
}

// Requested returns true if any file operation was asked for.
func (o FileOperations) Requested() bool {
	return o.DownloadOriginal || o.DownloadSummary
}

// Downloads holds the links offered with an answer.
type Downloads struct {
	Original string `json:"original,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// IsEmpty returns true if no links are offered.
func (d Downloads) IsEmpty() bool {
	return d.Original == "" && d.Summary == ""
}

// AskResult is the outcome of answering one question.
type AskResult struct {
	Response   string         `json:"response"`
	Downloads  Downloads      `json:"downloads"`
	Operations FileOperations `json:"operations"`
	SessionID  string         `json:"session_id"`
}
