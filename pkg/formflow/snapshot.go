package formflow

// Shared field keys used by the facilities console forms.
const (
	SharedSurveyID = "survey_id"
	SharedCategory = "category"
)

// FormSnapshot is the canonical in-memory state of one form: the ordered rows
// plus shared fields. Owned exclusively by the page Controller; nothing else
// mutates it directly.
type FormSnapshot struct {
	Shared map[string]string
	Form   *MultiRowFormState
}

func NewFormSnapshot() *FormSnapshot {
	return &FormSnapshot{
		Shared: make(map[string]string),
		Form:   NewMultiRowFormState(),
	}
}
