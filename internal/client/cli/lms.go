package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/render"
)

func (a *App) courses(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var courses []models.Course
	a.withSpinner("loading courses", func() { courses = a.syncer.FetchCourses(ctx) })

	w := a.table("ID", "LEVEL", "DURATION", "ENROLLED", "PRICE", "TITLE")
	defer w.Flush()
	for _, c := range courses {
		row(w, c.ID, orDash(c.DifficultyLevel), orDash(c.CourseDuration), c.EnrolledStudents, orDash(c.Price),
			render.Truncate(render.Text(c.Title.String()), titleWidth))
	}
	return nil
}

func (a *App) students(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var students []models.Student
	a.withSpinner("loading students", func() { students = a.syncer.FetchStudents(ctx) })

	w := a.table("ID", "NAME", "ENROLLED", "COMPLETED")
	defer w.Flush()
	for _, s := range students {
		row(w, s.ID, s.Name, joinInts(s.EnrolledCourses), joinInts(s.CompletedCourses))
	}
	return nil
}

func (a *App) lessons(ctx context.Context, args []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	courseID, err := optionalCourse(args)
	if err != nil {
		return err
	}
	var lessons []models.Lesson
	a.withSpinner("loading lessons", func() { lessons = a.syncer.FetchLessons(ctx, courseID) })

	w := a.table("ORDER", "ID", "COURSE", "TYPE", "DURATION", "TITLE")
	defer w.Flush()
	for _, l := range lessons {
		row(w, l.LessonOrder, l.ID, l.CourseID, l.LessonType, orDash(l.Duration), render.Text(l.Title.String()))
	}
	return nil
}

func (a *App) quizzes(ctx context.Context, args []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	courseID, err := optionalCourse(args)
	if err != nil {
		return err
	}
	var quizzes []models.Quiz
	a.withSpinner("loading quizzes", func() { quizzes = a.syncer.FetchQuizzes(ctx, courseID) })

	w := a.table("ID", "COURSE", "QUESTIONS", "TIME LIMIT", "PASSING", "TITLE")
	defer w.Flush()
	for _, q := range quizzes {
		row(w, q.ID, q.CourseID, len(q.Questions), fmt.Sprintf("%d min", q.TimeLimit), fmt.Sprintf("%d%%", q.PassingGrade),
			render.Text(q.Title.String()))
	}
	return nil
}

// course prints one course with completion stats computed from the
// students mirror, loading courses and students first when needed.
func (a *App) course(ctx context.Context, args []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	id, err := parseID(args[0], "course id")
	if err != nil {
		return err
	}

	courses := a.syncer.Courses()
	if len(courses) == 0 {
		a.withSpinner("loading courses", func() { courses = a.syncer.FetchCourses(ctx) })
	}
	if len(a.syncer.Students()) == 0 {
		a.withSpinner("loading students", func() { a.syncer.FetchStudents(ctx) })
	}

	var course *models.Course
	for i := range courses {
		if courses[i].ID == id {
			course = &courses[i]
			break
		}
	}
	if course == nil {
		a.printf("Course %d not found.\n", id)
		return nil
	}

	stats := a.syncer.CourseStats(id)
	a.printf("# %s\n\n", render.Text(course.Title.String()))
	if ex := render.Text(course.Excerpt.String()); ex != "" {
		a.printf("%s\n\n", ex)
	}
	a.printf("Level: %s  Duration: %s  Price: %s\n", orDash(course.DifficultyLevel), orDash(course.CourseDuration), orDash(course.Price))
	a.printf("Enrolled: %d  Completed: %d  Completion rate: %d%%\n", stats.Enrolled, stats.Completed, stats.CompletionRate)
	return nil
}

func studentCourse(args []string) (studentID, courseID int, err error) {
	if studentID, err = parseID(args[0], "student id"); err != nil {
		return 0, 0, err
	}
	if courseID, err = parseID(args[1], "course id"); err != nil {
		return 0, 0, err
	}
	return studentID, courseID, nil
}

func (a *App) enroll(ctx context.Context, args []string) error {
	studentID, courseID, err := studentCourse(args)
	if err != nil {
		return err
	}
	return a.syncer.EnrollStudent(ctx, studentID, courseID)
}

func (a *App) progress(ctx context.Context, args []string) error {
	studentID, courseID, err := studentCourse(args)
	if err != nil {
		return err
	}
	pct, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid percent %q", args[2])
	}
	return a.syncer.UpdateCourseProgress(ctx, studentID, courseID, pct)
}

func (a *App) complete(ctx context.Context, args []string) error {
	studentID, courseID, err := studentCourse(args)
	if err != nil {
		return err
	}
	return a.syncer.CompleteCourse(ctx, studentID, courseID)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "-"
	}
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(x)
	}
	return out
}
