package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errNoActive() error { return common.ErrNoActiveSite }

const studentsJSON = `[
	{"id":1,"name":"Ada","enrolled_courses":[1,2],"completed_courses":[1],"progress":[{"course_id":2,"progress_percentage":40,"last_activity":"old"}]},
	{"id":2,"name":"Linus","enrolled_courses":[1],"completed_courses":[]},
	{"id":3,"name":"Grace","enrolled_courses":[2]}
]`

func syncWithStudents(t *testing.T, api *fakeAPI, rec *notify.Recorder) *synchronizer {
	t.Helper()
	api.respond("tutor/students?per_page=100", studentsJSON)
	s := newTestSync(api, activeA(), rec)
	require.Len(t, s.FetchStudents(context.Background()), 3)
	return s
}

func student(s *synchronizer, id int) models.Student {
	for _, st := range s.Students() {
		if st.ID == id {
			return st
		}
	}
	return models.Student{}
}

func TestEnrollStudent_PostsAndUpdatesMirror(t *testing.T) {
	api := newFakeAPI()
	rec := &notify.Recorder{}
	s := syncWithStudents(t, api, rec)

	require.NoError(t, s.EnrollStudent(context.Background(), 2, 3))

	posted := api.posted("tutor/enrollments")
	require.Len(t, posted, 1)
	assert.Equal(t, map[string]int{"student_id": 2, "course_id": 3}, posted[0].Body)
	assert.Equal(t, []int{1, 3}, student(s, 2).EnrolledCourses)
	assert.Equal(t, []string{"Student Enrolled"}, rec.Titles())
	assert.Equal(t, notify.SeverityDefault, rec.All()[0].Severity)
}

func TestEnrollStudent_SimulatedWhenEndpointFails(t *testing.T) {
	api := newFakeAPI()
	api.postErr = errors.New("API request failed: 404 rest_no_route")
	rec := &notify.Recorder{}
	s := syncWithStudents(t, api, rec)

	require.NoError(t, s.EnrollStudent(context.Background(), 3, 1))
	require.NoError(t, s.EnrollStudent(context.Background(), 3, 1))

	assert.Equal(t, []int{2, 1}, student(s, 3).EnrolledCourses)
	all := rec.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Enrollment Simulated", all[0].Title)
	assert.Equal(t, notify.SeveritySimulated, all[0].Severity)
}

func TestEnrollStudent_SimulatedUnknownStudent(t *testing.T) {
	api := newFakeAPI()
	api.postErr = errors.New("down")
	s := syncWithStudents(t, api, &notify.Recorder{})

	err := s.EnrollStudent(context.Background(), 99, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateCourseProgress(t *testing.T) {
	api := newFakeAPI()
	api.postErr = errors.New("down")
	rec := &notify.Recorder{}
	s := syncWithStudents(t, api, rec)
	ctx := context.Background()

	require.NoError(t, s.UpdateCourseProgress(ctx, 1, 2, 75))
	got := student(s, 1)
	require.Len(t, got.Progress, 1)
	assert.Equal(t, 75, got.Progress[0].ProgressPercentage)
	assert.Equal(t, fixedNow.Format(time.RFC3339), got.Progress[0].LastActivity)

	require.NoError(t, s.UpdateCourseProgress(ctx, 2, 5, 10))
	got = student(s, 2)
	assert.Equal(t, []int{1, 5}, got.EnrolledCourses)
	p, ok := got.ProgressFor(5)
	require.True(t, ok)
	assert.Equal(t, 10, p.ProgressPercentage)

	assert.Error(t, s.UpdateCourseProgress(ctx, 1, 2, 101))
	assert.Error(t, s.UpdateCourseProgress(ctx, 1, 2, -1))
	assert.Equal(t, []string{"Progress Update Simulated", "Progress Update Simulated"}, rec.Titles())
}

func TestCompleteCourse(t *testing.T) {
	api := newFakeAPI()
	rec := &notify.Recorder{}
	s := syncWithStudents(t, api, rec)

	require.NoError(t, s.CompleteCourse(context.Background(), 3, 2))
	got := student(s, 3)
	assert.True(t, got.HasCompleted(2))
	p, ok := got.ProgressFor(2)
	require.True(t, ok)
	assert.Equal(t, 100, p.ProgressPercentage)
	assert.Len(t, api.posted("tutor/completion"), 1)
	assert.Equal(t, []string{"Course Completed"}, rec.Titles())
}

func TestCourseStats(t *testing.T) {
	s := syncWithStudents(t, newFakeAPI(), &notify.Recorder{})

	assert.Equal(t, models.CourseStats{CourseID: 1, Enrolled: 2, Completed: 1, CompletionRate: 50}, s.CourseStats(1))
	assert.Equal(t, models.CourseStats{CourseID: 2, Enrolled: 2, Completed: 0, CompletionRate: 0}, s.CourseStats(2))
	assert.Equal(t, models.CourseStats{CourseID: 9}, s.CourseStats(9))
}

func TestIsCoursePost(t *testing.T) {
	tests := []struct {
		name string
		post models.Post
		want bool
	}{
		{"course category", models.Post{Categories: []int{3, 1}}, true},
		{"title mentions course", models.Post{Title: models.Rendered{Rendered: "My COURSE outline"}}, true},
		{"neither", models.Post{Title: models.Rendered{Rendered: "News"}, Categories: []int{2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCoursePost(tt.post))
		})
	}
}
