package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/mitchellh/mapstructure"
)

// courseCategoryID is the post category treated as "course" when courses
// are derived from posts.
const courseCategoryID = 1

var (
	courseDurations    = []string{"4 weeks", "6 weeks", "8 weeks", "12 weeks"}
	difficultyLevels   = []string{"Beginner", "Intermediate", "Advanced"}
	synthEnrollCourses = []int{1, 2, 3}
)

func lmsEndpoint(base string, courseID int, paged bool) string {
	switch {
	case courseID > 0:
		return fmt.Sprintf("%s?course=%d", base, courseID)
	case paged:
		return fmt.Sprintf("%s?per_page=%d", base, common.DefaultPageSize)
	default:
		return base
	}
}

func (s *synchronizer) courseChain() []strategy[models.Course] {
	return []strategy[models.Course]{
		endpointStrategy[models.Course](s.api, lmsEndpoint("tutor/courses", 0, true)),
		endpointStrategy[models.Course](s.api, lmsEndpoint("courses", 0, true)),
		endpointStrategy[models.Course](s.api, lmsEndpoint("sfwd-courses", 0, true)),
		synthStrategy("posts", func(ctx context.Context, _ models.Site) []models.Course {
			return s.coursesFromPosts(ctx, s.FetchPosts(ctx))
		}),
	}
}

func (s *synchronizer) studentChain() []strategy[models.Student] {
	return []strategy[models.Student]{
		endpointStrategy[models.Student](s.api, lmsEndpoint("tutor/students", 0, true)),
		synthStrategy("users", func(ctx context.Context, _ models.Site) []models.Student {
			return s.studentsFromUsers(s.FetchUsers(ctx))
		}),
	}
}

func (s *synchronizer) lessonChain(courseID int) []strategy[models.Lesson] {
	return []strategy[models.Lesson]{
		endpointStrategy[models.Lesson](s.api, lmsEndpoint("tutor/lessons", courseID, false)),
		endpointStrategy[models.Lesson](s.api, lmsEndpoint("sfwd-lessons", courseID, false)),
		synthStrategy("placeholder", func(context.Context, models.Site) []models.Lesson {
			return placeholderLessons(courseID)
		}),
	}
}

func (s *synchronizer) quizChain(courseID int) []strategy[models.Quiz] {
	return []strategy[models.Quiz]{
		endpointStrategy[models.Quiz](s.api, lmsEndpoint("tutor/quizzes", courseID, false)),
		endpointStrategy[models.Quiz](s.api, lmsEndpoint("sfwd-quiz", courseID, false)),
		synthStrategy("placeholder", func(context.Context, models.Site) []models.Quiz {
			return placeholderQuizzes(courseID)
		}),
	}
}

func (s *synchronizer) FetchCourses(ctx context.Context) []models.Course {
	return fetchChain(ctx, s, KindCourses, s.courseChain, func(m *mirrors, v []models.Course) { m.courses = v })
}

func (s *synchronizer) FetchStudents(ctx context.Context) []models.Student {
	return fetchChain(ctx, s, KindStudents, s.studentChain, func(m *mirrors, v []models.Student) { m.students = v })
}

func (s *synchronizer) FetchLessons(ctx context.Context, courseID int) []models.Lesson {
	chain := func() []strategy[models.Lesson] { return s.lessonChain(courseID) }
	return fetchChain(ctx, s, KindLessons, chain, func(m *mirrors, v []models.Lesson) { m.lessons = v })
}

func (s *synchronizer) FetchQuizzes(ctx context.Context, courseID int) []models.Quiz {
	chain := func() []strategy[models.Quiz] { return s.quizChain(courseID) }
	return fetchChain(ctx, s, KindQuizzes, chain, func(m *mirrors, v []models.Quiz) { m.quizzes = v })
}

// isCoursePost matches posts in the course category or titled like a course.
func isCoursePost(p models.Post) bool {
	for _, c := range p.Categories {
		if c == courseCategoryID {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Title.String()), "course")
}

func (s *synchronizer) coursesFromPosts(ctx context.Context, posts []models.Post) []models.Course {
	out := make([]models.Course, 0, len(posts))
	for _, p := range posts {
		if !isCoursePost(p) {
			continue
		}

		var c models.Course
		if err := decodeJSONTagged(p, &c); err != nil {
			s.log.Warn(ctx, "failed to map post to course", "post", p.ID, "error", err)
			c = models.Course{ID: p.ID, Title: p.Title, Content: p.Content, Excerpt: p.Excerpt, Status: p.Status}
		}
		c.CourseDuration = courseDurations[s.rnd.IntN(len(courseDurations))]
		c.EnrolledStudents = s.rnd.IntN(100)
		c.DifficultyLevel = difficultyLevels[s.rnd.IntN(len(difficultyLevels))]
		out = append(out, c)
	}
	return out
}

// decodeJSONTagged copies the fields in and out share by json name.
func decodeJSONTagged(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func (s *synchronizer) studentsFromUsers(users []models.User) []models.Student {
	now := s.now().UTC().Format(time.RFC3339)
	out := make([]models.Student, 0, len(users))
	for _, u := range users {
		enrolled := append([]int(nil), synthEnrollCourses[:s.rnd.IntN(len(synthEnrollCourses))+1]...)
		completed := []int{}
		if s.rnd.IntN(2) == 1 {
			completed = []int{synthEnrollCourses[0]}
		}
		out = append(out, models.Student{
			User:             u,
			EnrolledCourses:  enrolled,
			CompletedCourses: completed,
			Progress: []models.CourseProgress{{
				CourseID:           synthEnrollCourses[0],
				ProgressPercentage: s.rnd.IntN(100),
				LastActivity:       now,
			}},
		})
	}
	return out
}

func orDefaultCourse(courseID int) int {
	if courseID > 0 {
		return courseID
	}
	return 1
}

func placeholderLessons(courseID int) []models.Lesson {
	cid := orDefaultCourse(courseID)
	lesson := func(id int, title, body string, kind models.LessonType, dur string) models.Lesson {
		return models.Lesson{
			ID:          id,
			Title:       models.Rendered{Rendered: title},
			Content:     models.Rendered{Rendered: body},
			Status:      "publish",
			CourseID:    cid,
			LessonOrder: id,
			LessonType:  kind,
			Duration:    dur,
		}
	}
	return []models.Lesson{
		lesson(1, "Introduction to the Course", "<p>Welcome to the course!</p>", models.LessonVideo, "15:00"),
		lesson(2, "Getting Started", "<p>Let's get started with the basics.</p>", models.LessonText, "25:00"),
		lesson(3, "First Quiz", "<p>Test your knowledge!</p>", models.LessonQuiz, "10:00"),
	}
}

func placeholderQuizzes(courseID int) []models.Quiz {
	cid := orDefaultCourse(courseID)
	return []models.Quiz{
		{
			ID:           1,
			Title:        models.Rendered{Rendered: "Module 1 Quiz"},
			Description:  "Test your knowledge of the first module",
			CourseID:     cid,
			TimeLimit:    30,
			PassingGrade: 70,
			MaxAttempts:  3,
			Questions: []models.Question{
				{
					ID:            101,
					Type:          models.QuestionMultipleChoice,
					QuestionText:  "What is the capital of France?",
					Options:       []string{"London", "Berlin", "Paris", "Madrid"},
					CorrectAnswer: models.Answers{"Paris"},
					Points:        1,
				},
				{
					ID:            102,
					Type:          models.QuestionTrueFalse,
					QuestionText:  "The sky is blue.",
					Options:       []string{"True", "False"},
					CorrectAnswer: models.Answers{"True"},
					Points:        1,
				},
			},
		},
		{
			ID:           2,
			Title:        models.Rendered{Rendered: "Final Assessment"},
			Description:  "Comprehensive final exam",
			CourseID:     cid,
			TimeLimit:    60,
			PassingGrade: 80,
			MaxAttempts:  2,
			Questions: []models.Question{
				{
					ID:           201,
					Type:         models.QuestionEssay,
					QuestionText: "Explain the concept in your own words.",
					Points:       5,
				},
				{
					ID:            202,
					Type:          models.QuestionFillBlank,
					QuestionText:  "The process of photosynthesis converts sunlight into ____.",
					CorrectAnswer: models.Answers{"energy"},
					Points:        2,
				},
			},
		},
	}
}

type lmsWrite struct {
	endpoint       string
	body           any
	doneTitle      string
	simulatedTitle string
	apply          func(st *models.Student, now string)
}

// write posts w to the LMS. On failure the change is applied to the
// students mirror only and a simulated notification is raised. The mirror
// is updated on success as well, so views agree until the next fetch.
func (s *synchronizer) write(ctx context.Context, studentID int, w lmsWrite) error {
	site := s.active.Active()
	if site == nil {
		return common.ErrNoActiveSite
	}

	err := s.api.Request(ctx, *site, http.MethodPost, w.endpoint, w.body, nil)
	simulated := err != nil

	now := s.now().UTC().Format(time.RFC3339)
	s.mu.Lock()
	found := false
	for i := range s.m.students {
		if s.m.students[i].ID == studentID {
			w.apply(&s.m.students[i], now)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if simulated && !found {
		return fmt.Errorf("student %d: %w", studentID, common.ErrorNotFound)
	}

	n := notify.Notification{Title: w.doneTitle, Description: "The change was saved to " + site.Name + "."}
	if simulated {
		n = notify.Notification{
			Title:       w.simulatedTitle,
			Description: "The LMS endpoint is unavailable; the change was applied locally only.",
			Severity:    notify.SeveritySimulated,
		}
	}
	s.notifier.Notify(ctx, n)
	return nil
}

func addUnique(xs []int, v int) []int {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}

func setProgress(st *models.Student, courseID, pct int, now string) {
	for i := range st.Progress {
		if st.Progress[i].CourseID == courseID {
			st.Progress[i].ProgressPercentage = pct
			st.Progress[i].LastActivity = now
			return
		}
	}
	st.Progress = append(st.Progress, models.CourseProgress{CourseID: courseID, ProgressPercentage: pct, LastActivity: now})
}

func (s *synchronizer) EnrollStudent(ctx context.Context, studentID, courseID int) error {
	return s.write(ctx, studentID, lmsWrite{
		endpoint:       "tutor/enrollments",
		body:           map[string]int{"student_id": studentID, "course_id": courseID},
		doneTitle:      "Student Enrolled",
		simulatedTitle: "Enrollment Simulated",
		apply: func(st *models.Student, _ string) {
			st.EnrolledCourses = addUnique(st.EnrolledCourses, courseID)
		},
	})
}

func (s *synchronizer) UpdateCourseProgress(ctx context.Context, studentID, courseID, percentage int) error {
	if percentage < 0 || percentage > 100 {
		return fmt.Errorf("progress %d is outside 0..100", percentage)
	}
	return s.write(ctx, studentID, lmsWrite{
		endpoint: "tutor/progress",
		body: map[string]int{
			"student_id":          studentID,
			"course_id":           courseID,
			"progress_percentage": percentage,
		},
		doneTitle:      "Progress Updated",
		simulatedTitle: "Progress Update Simulated",
		apply: func(st *models.Student, now string) {
			st.EnrolledCourses = addUnique(st.EnrolledCourses, courseID)
			setProgress(st, courseID, percentage, now)
		},
	})
}

func (s *synchronizer) CompleteCourse(ctx context.Context, studentID, courseID int) error {
	return s.write(ctx, studentID, lmsWrite{
		endpoint:       "tutor/completion",
		body:           map[string]int{"student_id": studentID, "course_id": courseID},
		doneTitle:      "Course Completed",
		simulatedTitle: "Completion Simulated",
		apply: func(st *models.Student, now string) {
			st.EnrolledCourses = addUnique(st.EnrolledCourses, courseID)
			st.CompletedCourses = addUnique(st.CompletedCourses, courseID)
			setProgress(st, courseID, 100, now)
		},
	})
}

// CourseStats counts enrolled and completed students of courseID from the
// students mirror.
func (s *synchronizer) CourseStats(courseID int) models.CourseStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.CourseStats{CourseID: courseID}
	for _, stu := range s.m.students {
		if !stu.IsEnrolled(courseID) {
			continue
		}
		st.Enrolled++
		if stu.HasCompleted(courseID) {
			st.Completed++
		}
	}
	if st.Enrolled > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) * 100 / float64(st.Enrolled)))
	}
	return st
}
