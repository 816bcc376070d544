package types

import "time"

// Document is one uploaded RFP file. Rows are immutable after creation
// except for UpdatedAt.
type Document struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	FileName  string    `db:"file_name" json:"fileName"`
	FilePath  string    `db:"file_path" json:"filePath"`
	FileSize  int64     `db:"file_size" json:"fileSize"`
	FileType  string    `db:"file_type" json:"fileType"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// AnalysisStatus tracks the two-phase write of an analysis row: the interim
// row holds raw extracted text in Summary with status pending, the final
// write settles on complete, partial, or failed.
type AnalysisStatus string

const (
	AnalysisStatusPending  AnalysisStatus = "pending"
	AnalysisStatusPartial  AnalysisStatus = "partial"
	AnalysisStatusComplete AnalysisStatus = "complete"
	AnalysisStatusFailed   AnalysisStatus = "failed"
)

// DocumentAnalysis is the structured record extracted from a document.
// Every structured field is optional; list fields keep the order returned
// by the language model.
type DocumentAnalysis struct {
	ID                     string         `db:"id" json:"id"`
	DocumentID             string         `db:"document_id" json:"documentId"`
	UserID                 string         `db:"user_id" json:"userId"`
	ProjectName            *string        `db:"project_name" json:"projectName"`
	Deadline               *string        `db:"deadline" json:"deadline"`
	Budget                 *string        `db:"budget" json:"budget"`
	Summary                *string        `db:"summary" json:"summary"`
	Requirements           []string       `db:"requirements" json:"requirements"`
	Stakeholders           []string       `db:"stakeholders" json:"stakeholders"`
	EvaluationCriteria     []string       `db:"evaluation_criteria" json:"evaluationCriteria"`
	SubmissionInstructions *string        `db:"submission_instructions" json:"submissionInstructions"`
	ContactInformation     *string        `db:"contact_information" json:"contactInformation"`
	Status                 AnalysisStatus `db:"status" json:"status"`
	CreatedAt              time.Time      `db:"created_at" json:"createdAt"`
}

// HasStructuredFields reports whether the final analysis write populated
// anything beyond the raw-text summary. Views use it to distinguish a
// finished record from the interim state.
func (a *DocumentAnalysis) HasStructuredFields() bool {
	return a.ProjectName != nil || a.Deadline != nil || a.Budget != nil ||
		len(a.Requirements) > 0 || len(a.Stakeholders) > 0 ||
		len(a.EvaluationCriteria) > 0 ||
		a.SubmissionInstructions != nil || a.ContactInformation != nil
}

// AnalysisFields is the wire shape requested from the language model.
type AnalysisFields struct {
	ProjectName            string   `json:"project_name,omitempty"`
	Deadline               string   `json:"deadline,omitempty"`
	Budget                 string   `json:"budget,omitempty"`
	Summary                string   `json:"summary,omitempty"`
	Requirements           []string `json:"requirements,omitempty"`
	Stakeholders           []string `json:"stakeholders,omitempty"`
	EvaluationCriteria     []string `json:"evaluation_criteria,omitempty"`
	SubmissionInstructions string   `json:"submission_instructions,omitempty"`
	ContactInformation     string   `json:"contact_information,omitempty"`
}

// Empty reports whether the model returned nothing usable.
func (f AnalysisFields) Empty() bool {
	return f.ProjectName == "" && f.Deadline == "" && f.Budget == "" &&
		f.Summary == "" && len(f.Requirements) == 0 &&
		len(f.Stakeholders) == 0 && len(f.EvaluationCriteria) == 0 &&
		f.SubmissionInstructions == "" && f.ContactInformation == ""
}

// ChatMessage is one entry of a per-document Q&A thread.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"documentId"`
	UserID     string    `db:"user_id" json:"userId"`
	Message    string    `db:"message" json:"message"`
	IsUser     bool      `db:"is_user" json:"isUser"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
