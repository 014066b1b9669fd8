package exam

// GroupType tags the payload a question group carries.
type GroupType string

const (
	MultipleChoice    GroupType = "multiple_choice"
	TrueFalseNotGiven GroupType = "true_false_not_given"
	FillInBlanks      GroupType = "fill_in_blanks"
	DragDrop          GroupType = "drag_drop"
	Table             GroupType = "table"
)

// Option is one lettered choice of a multiple_choice question or one
// column of a table row.
type Option struct {
	ID        string `json:"id,omitempty"`
	Letter    string `json:"letter"`
	Text      string `json:"option_text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a scoreable item. Number is nil for drag_drop distractors.
type Question struct {
	ID            string   `json:"id,omitempty"`
	Number        *int     `json:"question_number"`
	Text          string   `json:"question_text"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   *string  `json:"explanation"`
	IsCorrect     bool     `json:"is_correct"`
	Options       []Option `json:"options,omitempty"`
}

type Group struct {
	ID          string    `json:"id,omitempty"`
	Type        GroupType `json:"type"`
	Instruction string    `json:"instruction"`

	QuestionText string     `json:"question_text,omitempty"` // multiple_choice passage
	Content      string     `json:"content,omitempty"`       // fill_in_blanks / drag_drop passage with ___ blanks
	Answers      []string   `json:"answers,omitempty"`       // fill_in_blanks, one per blank
	Columns      []string   `json:"options,omitempty"`       // table column letters
	Questions    []Question `json:"questions,omitempty"`

	StartNumber int `json:"_startQuestionNumber,omitempty"`
}

type Part struct {
	ID           string  `json:"id,omitempty"`
	Number       int     `json:"part_number"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	ImageURL     *string `json:"image_url"`
	ListeningURL *string `json:"listening_url"`
	Groups       []Group `json:"question_groups"`
}

// TestMeta is the test-level form data.
type TestMeta struct {
	Title      string `json:"title" validate:"max=200"`
	Duration   int    `json:"duration" validate:"min=1,max=600"`
	Difficulty string `json:"difficulty" validate:"oneof=EASY MEDIUM HARD"`
	Type       string `json:"type" validate:"oneof=reading listening"`
	IsPremium  bool   `json:"is_premium"`
	IsActive   bool   `json:"is_active"`
}

type Test struct {
	ID string `json:"id,omitempty"`
	TestMeta
	QuestionQuantity int    `json:"question_quantity"`
	CreatedAt        int64  `json:"created_at,omitempty"`
	UpdatedAt        int64  `json:"updated_at,omitempty"`
	Parts            []Part `json:"parts"`
}

// TestSummary is a list row without the part tree.
type TestSummary struct {
	ID string `json:"id"`
	TestMeta
	QuestionQuantity int   `json:"question_quantity"`
	CreatedAt        int64 `json:"created_at"`
	UpdatedAt        int64 `json:"updated_at"`
}

// TestPatch is a partial update of test-level fields; nil fields are left alone.
type TestPatch struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=200"`
	Duration   *int    `json:"duration" validate:"omitempty,min=1,max=600"`
	Difficulty *string `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Type       *string `json:"type" validate:"omitempty,oneof=reading listening"`
	IsPremium  *bool   `json:"is_premium"`
	IsActive   *bool   `json:"is_active"`
}

// NewTest returns the editor's starting point: one part holding one
// multiple_choice group with a single empty question.
func NewTest() Test {
	return Test{
		TestMeta: TestMeta{Duration: 60, Difficulty: "MEDIUM", Type: "reading", IsActive: true},
		Parts:    AddPart(nil),
	}
}

func intPtr(n int) *int { return &n }
