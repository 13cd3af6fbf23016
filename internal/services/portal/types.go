package portal

// User is the account record returned by the auth endpoints.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// Token carries a bearer credential issued by the login endpoint,
// together with the identity it was minted for.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
}

// Profile is the mentor business profile keyed by the auth user id.
// Timestamps stay as wire strings; callers only ever test presence.
type Profile struct {
	ID                    string `json:"id"`
	UserID                string `json:"user_id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	FullName              string `json:"full_name"`
	CompanyName           string `json:"company_name"`
	Industry              string `json:"industry"`
	LanguageTone          string `json:"language_tone"`
	Status                string `json:"status"`
	WebsiteURL            string `json:"website_url"`
	Niche                 string `json:"niche"`
	MethodDescription     string `json:"method_description"`
	TargetAudience        string `json:"target_audience"`
	AudiencePainPoints    string `json:"audience_pain_points"`
	TransformationPromise string `json:"transformation_promise"`
	UniqueMechanism       string `json:"unique_mechanism"`
	PersonalStory         string `json:"personal_story"`
	Philosophy            string `json:"philosophy"`
	KeyObjections         string `json:"key_objections"`
	Testimonials          string `json:"testimonials"`
	CurrentStage          string `json:"current_stage"`
	StageStartedAt        string `json:"stage_started_at"`
	CreatedAt             string `json:"created_at"`
	UpdatedAt             string `json:"updated_at"`
}

// ProfileUpdate carries partial profile edits. Nil fields are omitted
// from the PATCH body so the backend leaves them untouched.
type ProfileUpdate struct {
	Name                  *string `json:"name,omitempty"`
	Email                 *string `json:"email,omitempty"`
	FullName              *string `json:"full_name,omitempty"`
	CompanyName           *string `json:"company_name,omitempty"`
	WebsiteURL            *string `json:"website_url,omitempty"`
	Niche                 *string `json:"niche,omitempty"`
	MethodDescription     *string `json:"method_description,omitempty"`
	TargetAudience        *string `json:"target_audience,omitempty"`
	AudiencePainPoints    *string `json:"audience_pain_points,omitempty"`
	TransformationPromise *string `json:"transformation_promise,omitempty"`
	UniqueMechanism       *string `json:"unique_mechanism,omitempty"`
	PersonalStory         *string `json:"personal_story,omitempty"`
	Philosophy            *string `json:"philosophy,omitempty"`
	KeyObjections         *string `json:"key_objections,omitempty"`
	Testimonials          *string `json:"testimonials,omitempty"`
	CurrentStage          *string `json:"current_stage,omitempty"`
}

// Concept is one generated webinar concept candidate.
type Concept struct {
	Title                string              `json:"title"`
	BigIdea              string              `json:"big_idea"`
	Hook                 string              `json:"hook"`
	NarrativeAngle       string              `json:"narrative_angle,omitempty"`
	StructurePoints      []string            `json:"structure_points,omitempty"`
	Secrets              []map[string]string `json:"secrets,omitempty"`
	Mechanism            string              `json:"mechanism,omitempty"`
	ValueAnchor          map[string][]string `json:"value_anchor,omitempty"`
	BonusIdeas           []string            `json:"bonus_ideas,omitempty"`
	CTASentence          string              `json:"cta_sentence,omitempty"`
	Promises             []string            `json:"promises,omitempty"`
	OfferTransitionLogic string              `json:"offer_transition_logic,omitempty"`
	EvaluationScore      *float64            `json:"evaluation_score,omitempty"`
	EvaluationNotes      string              `json:"evaluation_notes,omitempty"`
}

// Slide is one entry of the structured webinar outline.
type Slide struct {
	SlideNumber int    `json:"slide_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visual      string `json:"visual"`
	Section     string `json:"section"`
}

// EmailDraft is a single email inside a generated plan.
type EmailDraft struct {
	Day          string `json:"day"`
	Segment      string `json:"segment"`
	Purpose      string `json:"purpose"`
	Subject      string `json:"subject"`
	Preheader    string `json:"preheader"`
	Body         string `json:"body"`
	CTA          string `json:"cta"`
	ToneAnalysis string `json:"tone_analysis"`
}

// EmailPlan groups the generated launch emails with their timeline.
type EmailPlan struct {
	Timeline      []map[string]any `json:"timeline,omitempty"`
	Emails        []EmailDraft     `json:"emails"`
	StrategyNotes string           `json:"strategy_notes,omitempty"`
}

// PromotionalImage is a generated marketing visual attached to an asset.
type PromotionalImage struct {
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Prompt    string `json:"prompt"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Asset is the full webinar production record for one mentor.
type Asset struct {
	ID       string `json:"id"`
	MentorID string `json:"mentor_id"`

	OnboardingDocContent string `json:"onboarding_doc_content"`
	HookAnalysisContent  string `json:"hook_analysis_content"`
	TranscriptAnalysis   string `json:"transcript_analysis"`

	ConceptsOriginal      []Concept `json:"concepts_original"`
	ConceptsEvaluated     string    `json:"concepts_evaluated"`
	ConceptsImproved      []Concept `json:"concepts_improved"`
	SelectedConcept       *Concept  `json:"selected_concept"`
	ConceptVersion        int       `json:"concept_version"`
	ConceptApprovalStatus string    `json:"concept_approval_status"`
	ConceptAdminNotes     string    `json:"concept_admin_notes"`

	StructureContent        string  `json:"structure_content"`
	Structure               []Slide `json:"structure"`
	StructureVersion        int     `json:"structure_version"`
	StructureApprovalStatus string  `json:"structure_approval_status"`
	StructureAdminNotes     string  `json:"structure_admin_notes"`

	EmailPlan           *EmailPlan `json:"email_plan"`
	EmailVersion        int        `json:"email_version"`
	EmailApprovalStatus string     `json:"email_approval_status"`
	EmailAdminNotes     string     `json:"email_admin_notes"`

	PromotionalImages []PromotionalImage `json:"promotional_images"`

	VideoTalkID string `json:"video_talk_id"`
	VideoStatus string `json:"video_status"`
	VideoURL    string `json:"video_url"`

	SubmittedForApprovalAt string `json:"submitted_for_approval_at"`
	AdminApprovedAt        string `json:"admin_approved_at"`
	ReadyToPublish         bool   `json:"ready_to_publish"`
	Status                 string `json:"status"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// JobState enumerates the lifecycle states of a background job.
type JobState string

// Job lifecycle states as reported by the backend.
const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the state ends the job's lifecycle.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a background job status snapshot.
type Job struct {
	JobID     string   `json:"job_id"`
	Status    JobState `json:"status"`
	Progress  int      `json:"progress"`
	Message   string   `json:"message"`
	AssetID   string   `json:"asset_id"`
	Error     string   `json:"error"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// UploadResult reports the outcome of a context upload. New backends
// return an async job handle; legacy ones return the asset directly.
type UploadResult struct {
	Async   bool
	JobID   string
	AssetID string
	Message string
}

// VideoJob is the state of an avatar video render.
type VideoJob struct {
	TalkID    string `json:"id"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url"`
	Detail    string `json:"detail"`
}

// ApprovalDecision is the backend's answer to an approval status probe.
type ApprovalDecision struct {
	CanProceed    bool   `json:"can_proceed"`
	CurrentStatus string `json:"current_status"`
	AdminNotes    string `json:"admin_notes"`
	Message       string `json:"message"`
}

// ApprovalRecord is one entry in an asset's approval history.
type ApprovalRecord struct {
	ID          string `json:"id"`
	AssetID     string `json:"asset_id"`
	ContentType string `json:"content_type"`
	Version     int    `json:"version"`
	Status      string `json:"status"`
	AdminNotes  string `json:"admin_notes"`
	SubmittedAt string `json:"submitted_at"`
	ReviewedAt  string `json:"reviewed_at"`
}

// Ack is the generic {status, message} acknowledgement many generation
// endpoints return when the interesting output lands on the asset.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
