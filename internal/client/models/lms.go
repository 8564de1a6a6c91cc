package models

import "encoding/json"

type Course struct {
	ID            int      `json:"id"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Excerpt       Rendered `json:"excerpt"`
	Status        string   `json:"status"`
	Date          string   `json:"date"`
	Modified      string   `json:"modified"`
	Author        int      `json:"author"`
	FeaturedMedia int      `json:"featured_media"`
	Link          string   `json:"link"`
	Slug          string   `json:"slug"`
	Categories    []int    `json:"categories,omitempty"`

	CourseDuration   string `json:"course_duration,omitempty"`
	EnrolledStudents int    `json:"enrolled_students,omitempty"`
	Price            string `json:"price,omitempty"`
	SalePrice        string `json:"sale_price,omitempty"`
	DifficultyLevel  string `json:"difficulty_level,omitempty"`
	Instructor       int    `json:"instructor,omitempty"`
}

type CourseProgress struct {
	CourseID           int    `json:"course_id"`
	ProgressPercentage int    `json:"progress_percentage"`
	LastActivity       string `json:"last_activity"`
}

// Student is a User augmented with LMS enrollment state.
type Student struct {
	User
	EnrolledCourses  []int            `json:"enrolled_courses,omitempty"`
	CompletedCourses []int            `json:"completed_courses,omitempty"`
	Progress         []CourseProgress `json:"progress,omitempty"`
}

// IsEnrolled reports whether the student is enrolled in courseID.
func (s Student) IsEnrolled(courseID int) bool {
	return containsInt(s.EnrolledCourses, courseID)
}

// HasCompleted reports whether the student completed courseID.
func (s Student) HasCompleted(courseID int) bool {
	return containsInt(s.CompletedCourses, courseID)
}

// ProgressFor returns the progress row for courseID, if any.
func (s Student) ProgressFor(courseID int) (CourseProgress, bool) {
	for _, p := range s.Progress {
		if p.CourseID == courseID {
			return p, true
		}
	}
	return CourseProgress{}, false
}

type LessonType string

const (
	LessonVideo      LessonType = "video"
	LessonText       LessonType = "text"
	LessonQuiz       LessonType = "quiz"
	LessonAssignment LessonType = "assignment"
)

type Lesson struct {
	ID          int        `json:"id"`
	Title       Rendered   `json:"title"`
	Content     Rendered   `json:"content"`
	Status      string     `json:"status"`
	CourseID    int        `json:"course_id"`
	LessonOrder int        `json:"lesson_order"`
	LessonType  LessonType `json:"lesson_type"`
	Duration    string     `json:"duration"`
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionEssay          QuestionType = "essay"
	QuestionFillBlank      QuestionType = "fill-blank"
)

// Answers holds a correct answer that the API may send either as a single
// string or as a list of strings.
type Answers []string

func (a *Answers) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*a = Answers{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*a = many
	return nil
}

type Question struct {
	ID            int          `json:"id"`
	Type          QuestionType `json:"type"`
	QuestionText  string       `json:"question_text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer Answers      `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
}

type Quiz struct {
	ID           int        `json:"id"`
	Title        Rendered   `json:"title"`
	Description  string     `json:"description,omitempty"`
	CourseID     int        `json:"course_id"`
	TimeLimit    int        `json:"time_limit,omitempty"`
	PassingGrade int        `json:"passing_grade,omitempty"`
	MaxAttempts  int        `json:"max_attempts,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
}

// CourseStats summarises enrollment for one course.
type CourseStats struct {
	CourseID       int `json:"course_id"`
	Enrolled       int `json:"enrolled"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completion_rate"`
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
