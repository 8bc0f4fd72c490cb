package coursethreads

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecessbot/core"
	"ecessbot/models"
	"ecessbot/services/jsonstore"
)

var (
	cpen211 = models.Course{Dept: "CPEN", Code: "211"}
	elec201 = models.Course{Dept: "ELEC", Code: "201"}
	cpen311 = models.Course{Dept: "CPEN", Code: "311"}
)

type testFixture struct {
	service *CourseThreadsService
	dir     string
	ctx     context.Context
}

func setupCourseThreadsTest(t *testing.T) *testFixture {
	dir := t.TempDir()
	store, err := jsonstore.New(dir, Filename, models.NewCourseThreadMap)
	require.NoError(t, err)
	return &testFixture{
		service: NewCourseThreadsService(store),
		dir:     dir,
		ctx:     context.Background(),
	}
}

func TestCourseThreadsService_RegisterBase(t *testing.T) {
	t.Run("rejects non digit year level", func(t *testing.T) {
		f := setupCourseThreadsTest(t)
		for _, year := range []string{"", "x", "12"} {
			err := f.service.RegisterBase(f.ctx, year, "500")
			_, isValidation := core.IsValidationError(err)
			assert.True(t, isValidation, year)
		}
	})

	t.Run("can re-register while empty", func(t *testing.T) {
		f := setupCourseThreadsTest(t)
		require.NoError(t, f.service.RegisterBase(f.ctx, "1", "500"))
		require.NoError(t, f.service.RegisterBase(f.ctx, "1", "501"))

		base, err := f.service.GetBase(f.ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "501", base.MustGet())
	})

	t.Run("immutable once a course exists", func(t *testing.T) {
		f := setupCourseThreadsTest(t)
		require.NoError(t, f.service.RegisterBase(f.ctx, "2", "500"))
		require.NoError(t, f.service.AddCourse(f.ctx, cpen211, "900"))

		err := f.service.RegisterBase(f.ctx, "2", "501")
		_, isConflict := core.IsConflictError(err)
		assert.True(t, isConflict)

		base, err := f.service.GetBase(f.ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, "500", base.MustGet())
	})
}

func TestCourseThreadsService_AddCourse(t *testing.T) {
	f := setupCourseThreadsTest(t)

	err := f.service.AddCourse(f.ctx, cpen211, "900")
	_, isValidation := core.IsValidationError(err)
	assert.True(t, isValidation, "no base channel")

	require.NoError(t, f.service.RegisterBase(f.ctx, "2", "500"))
	require.NoError(t, f.service.AddCourse(f.ctx, cpen211, "900"))

	err = f.service.AddCourse(f.ctx, cpen211, "901")
	_, isConflict := core.IsConflictError(err)
	assert.True(t, isConflict)

	data, err := os.ReadFile(filepath.Join(f.dir, Filename))
	require.NoError(t, err)
	assert.JSONEq(t, `{"2": {"base_channel": 500, "current_courses": {"CPEN 211": 900}}}`, string(data))
}

func TestCourseThreadsService_RemoveCourse(t *testing.T) {
	f := setupCourseThreadsTest(t)
	require.NoError(t, f.service.RegisterBase(f.ctx, "2", "500"))
	require.NoError(t, f.service.AddCourse(f.ctx, cpen211, "900"))
	require.NoError(t, f.service.AddCourse(f.ctx, elec201, "901"))

	threadID, err := f.service.RemoveCourse(f.ctx, cpen211)
	require.NoError(t, err)
	assert.Equal(t, "900", threadID)

	courses, err := f.service.ListCourses(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CourseThread{{YearLevel: "2", Course: "ELEC 201", ThreadID: "901"}}, courses)

	_, err = f.service.RemoveCourse(f.ctx, cpen211)
	validation, isValidation := core.IsValidationError(err)
	require.True(t, isValidation)
	assert.Equal(t, "A thread for `CPEN 211` doesn't exist.", validation.Message)

	courses, err = f.service.ListCourses(f.ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestCourseThreadsService_SearchCourses(t *testing.T) {
	f := setupCourseThreadsTest(t)
	require.NoError(t, f.service.RegisterBase(f.ctx, "2", "500"))
	require.NoError(t, f.service.RegisterBase(f.ctx, "3", "501"))
	require.NoError(t, f.service.AddCourse(f.ctx, cpen211, "900"))
	require.NoError(t, f.service.AddCourse(f.ctx, elec201, "901"))
	require.NoError(t, f.service.AddCourse(f.ctx, cpen311, "902"))

	tests := []struct {
		query string
		want  []string
	}{
		{"cpen", []string{"CPEN 211", "CPEN 311"}},
		{"cpen211", []string{"CPEN 211"}},
		{"CPEN 3", []string{"CPEN 311"}},
		{"201", []string{"ELEC 201"}},
		{"math", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			matches, err := f.service.SearchCourses(f.ctx, tt.query)
			require.NoError(t, err)
			var got []string
			for _, match := range matches {
				got = append(got, match.Course)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCourseThreadsService_PruneThread(t *testing.T) {
	f := setupCourseThreadsTest(t)
	require.NoError(t, f.service.RegisterBase(f.ctx, "2", "500"))
	require.NoError(t, f.service.AddCourse(f.ctx, cpen211, "900"))
	require.NoError(t, f.service.AddCourse(f.ctx, elec201, "901"))

	pruned, err := f.service.PruneThread(f.ctx, "900")
	require.NoError(t, err)
	assert.True(t, pruned)

	pruned, err = f.service.PruneThread(f.ctx, "900")
	require.NoError(t, err)
	assert.False(t, pruned)

	tracked, err := f.service.TrackedThreads(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"901"}, tracked)

	isCourse, err := f.service.IsCourseThread(f.ctx, "901")
	require.NoError(t, err)
	assert.True(t, isCourse)

	ran := false
	repaired, err := f.service.RepairIfTracked(f.ctx, "900", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.False(t, ran, "pruned threads are never repaired")
}
