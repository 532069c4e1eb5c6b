package validator

// RegisterRequest carries a new account. Form names match the classic sign-up form.
type RegisterRequest struct {
	Username  string `json:"username" form:"username" validate:"required,username"`
	Password  string `json:"password" form:"psw" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" form:"firstname" validate:"max=150"`
	LastName  string `json:"last_name" form:"lastname" validate:"max=150"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"psw" validate:"required"`
}

// CatalogRow is one spreadsheet row of a catalog import: a single choice
// together with the question and course it belongs to.
type CatalogRow struct {
	Line              int    `json:"line"`
	CourseTitle       string `json:"course_title" validate:"required,max=200"`
	CourseDescription string `json:"course_description"`
	QuestionText      string `json:"question_text" validate:"required"`
	QuestionGrade     int    `json:"question_grade" validate:"min=0,max=1000"`
	HasGrade          bool   `json:"-"`
	ChoiceText        string `json:"choice_text" validate:"required"`
	ChoiceIsCorrect   bool   `json:"choice_is_correct"`
}
