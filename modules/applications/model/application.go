package model

import (
	"encoding/json"
	"time"
)

// Status is a node in the Application state machine (spec §4.3).
type Status string

const (
	StatusScraped              Status = "scraped"
	StatusQualified            Status = "qualified"
	StatusCVGenerating         Status = "cv_generating"
	StatusCVFailedValidation   Status = "cv_failed_validation"
	StatusCVReady              Status = "cv_ready"
	StatusCVApproved           Status = "cv_approved"
	StatusApplicationStarted   Status = "application_started"
	StatusFormFilled           Status = "form_filled"
	StatusPendingHumanReview   Status = "pending_human_review"
	StatusSubmittedAmbiguous   Status = "submitted_ambiguous"
	StatusApplied              Status = "applied"
	StatusAcknowledged         Status = "acknowledged"
	StatusInterviewScheduled   Status = "interview_scheduled"
	StatusInterviewed          Status = "interviewed"
	StatusOffered              Status = "offered"
	StatusRejected             Status = "rejected"
	StatusWithdrawn            Status = "withdrawn"
	StatusExpired              Status = "expired"
)

// allowedTransitions encodes the state set from spec §4.3 verbatim. Any
// non-terminal status may additionally move to rejected/withdrawn/expired;
// that fan-out is added once below rather than repeated per row.
var allowedTransitions = map[Status][]Status{
	StatusScraped:            {StatusQualified},
	StatusQualified:          {StatusCVGenerating},
	StatusCVGenerating:       {StatusCVReady, StatusCVFailedValidation},
	StatusCVReady:            {StatusCVApproved},
	// CVApproved is reached twice in the lifecycle: once when the operator
	// approves the generated CV (-> ApplicationStarted resumes the
	// pipeline), and again as the Human-Loop authorization effect once the
	// filled form is reviewed (-> Applied/SubmittedAmbiguous is the Submit
	// task's outcome).
	StatusCVApproved:         {StatusApplicationStarted, StatusApplied, StatusSubmittedAmbiguous},
	StatusApplicationStarted: {StatusFormFilled},
	StatusFormFilled:         {StatusPendingHumanReview},
	StatusPendingHumanReview: {StatusSubmittedAmbiguous, StatusApplied, StatusCVApproved},
	StatusApplied:            {StatusAcknowledged},
	StatusAcknowledged:       {StatusInterviewScheduled},
	StatusInterviewScheduled: {StatusInterviewed},
	StatusInterviewed:        {StatusOffered, StatusRejected},
}

var terminalStatuses = map[Status]bool{
	StatusCVFailedValidation: true,
	StatusSubmittedAmbiguous: true,
	StatusOffered:            true,
	StatusRejected:           true,
	StatusWithdrawn:          true,
	StatusExpired:            true,
}

// CanTransition reports whether from → to is a legal move: either listed
// explicitly, or the universal non-terminal → {rejected, withdrawn, expired}
// escape hatch.
func CanTransition(from, to Status) bool {
	if terminalStatuses[from] {
		return false
	}
	if to == StatusRejected || to == StatusWithdrawn || to == StatusExpired {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application is the core aggregate tracked through the state machine.
type Application struct {
	ID                string
	PostingID         string
	Status            Status
	AuthorizedByHuman bool
	AuthorizedAt      *time.Time
	FormURL           string
	SnapshotPath      string
	ConfirmationPath  string
	ConfirmationSignal string
	Note              string

	// CVPath is the rendered adapted-CV artifact path (spec §3 "PDF path").
	CVPath string
	// CoverLetterText is the generated cover letter body (spec §3 "cover
	// letter text"); stored as text, not a file, since nothing downstream
	// needs it as a standalone artifact.
	CoverLetterText string
	// QualityScore/QualityATS/QualityRelevance/QualityLanguage are the
	// Driver's step-6 rubric (spec §3 "quality score + rubric").
	QualityScore     float64
	QualityATS       float64
	QualityRelevance float64
	QualityLanguage  float64
	// CanonicalCVSnapshot/AdaptedCVSnapshot are JSON blobs of the CV
	// documents the Driver read/produced for this application (spec §3
	// "canonical CV document (structured), adapted CV document"; §9 notes
	// structured CV documents are persisted as jsonb).
	CanonicalCVSnapshot string
	AdaptedCVSnapshot   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplicationDTO is the wire representation.
type ApplicationDTO struct {
	ID                  string     `json:"id"`
	PostingID           string     `json:"posting_id"`
	Status              string     `json:"status"`
	AuthorizedByHuman    bool       `json:"authorized_by_human"`
	AuthorizedAt         *time.Time `json:"authorized_at,omitempty"`
	FormURL              string     `json:"form_url,omitempty"`
	SnapshotPath         string     `json:"snapshot_path,omitempty"`
	ConfirmationPath     string     `json:"confirmation_path,omitempty"`
	ConfirmationSignal   string     `json:"confirmation_signal,omitempty"`
	Note                 string     `json:"note,omitempty"`

	CVPath              string          `json:"cv_path,omitempty"`
	CoverLetterText     string          `json:"cover_letter_text,omitempty"`
	QualityScore        float64         `json:"quality_score,omitempty"`
	QualityATS          float64         `json:"quality_ats,omitempty"`
	QualityRelevance    float64         `json:"quality_relevance,omitempty"`
	QualityLanguage     float64         `json:"quality_language,omitempty"`
	CanonicalCVSnapshot json.RawMessage `json:"canonical_cv,omitempty"`
	AdaptedCVSnapshot   json.RawMessage `json:"adapted_cv,omitempty"`

	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ToDTO converts an Application to its wire representation.
func (a *Application) ToDTO() *ApplicationDTO {
	dto := &ApplicationDTO{
		ID:                 a.ID,
		PostingID:          a.PostingID,
		Status:             string(a.Status),
		AuthorizedByHuman:  a.AuthorizedByHuman,
		AuthorizedAt:       a.AuthorizedAt,
		FormURL:            a.FormURL,
		SnapshotPath:       a.SnapshotPath,
		ConfirmationPath:   a.ConfirmationPath,
		ConfirmationSignal: a.ConfirmationSignal,
		Note:               a.Note,
		CVPath:             a.CVPath,
		CoverLetterText:    a.CoverLetterText,
		QualityScore:       a.QualityScore,
		QualityATS:         a.QualityATS,
		QualityRelevance:   a.QualityRelevance,
		QualityLanguage:    a.QualityLanguage,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if a.CanonicalCVSnapshot != "" {
		dto.CanonicalCVSnapshot = json.RawMessage(a.CanonicalCVSnapshot)
	}
	if a.AdaptedCVSnapshot != "" {
		dto.AdaptedCVSnapshot = json.RawMessage(a.AdaptedCVSnapshot)
	}
	return dto
}

// Event is a single row of the immutable audit log, spec §4.3's "Not having
// the Event is a bug; having the Event without the field change is a bug."
type Event struct {
	ID            string
	ApplicationID string
	OldStatus     Status
	NewStatus     Status
	Actor         string
	CreatedAt     time.Time
}
