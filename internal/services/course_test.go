package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCourseService(t *testing.T) *CourseService {
	t.Helper()
	_, st := setupServiceTestDB(t)
	svc := NewCourseService(st)
	n, err := svc.EnsureSeeded(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return svc
}

func courseIDs(views []CourseView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestCourseService_EnsureSeededOnlyOnce(t *testing.T) {
	svc := seededCourseService(t)
	n, err := svc.EnsureSeeded(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := svc.ListCourses(context.Background(), CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c-inf-001", "c-inf-002", "c-inf-003", "c-inf-004"}, courseIDs(all))
	assert.Equal(t, "2025-02-10", all[0].StartDate)
	assert.Equal(t, []string{"android", "pwa", "rest"}, all[0].Tags)
}

func TestCourseService_Filters(t *testing.T) {
	svc := seededCourseService(t)
	tests := []struct {
		name   string
		filter CourseFilter
		want   []string
	}{
		{"modality ignores case", CourseFilter{Modality: "virtual"}, []string{"c-inf-002"}},
		{"campus", CourseFilter{Campus: "VIRTUAL"}, []string{"c-inf-002", "c-inf-004"}},
		{"tag", CourseFilter{Tag: "PWA"}, []string{"c-inf-001"}},
		{"search in summary", CourseFilter{Search: "pipelines"}, []string{"c-inf-004"}},
		{"search in title and summary", CourseFilter{Search: "MÓVIL"}, []string{"c-inf-001", "c-inf-003"}},
		{"combined", CourseFilter{Campus: "virtual", Tag: "cloud"}, []string{"c-inf-002"}},
		{"no match", CourseFilter{Tag: "cobol"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListCourses(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, courseIDs(got))
		})
	}
}

func TestCourseService_GetCourse(t *testing.T) {
	svc := seededCourseService(t)

	c, err := svc.GetCourse(context.Background(), "c-inf-003")
	require.NoError(t, err)
	assert.Equal(t, "Bogotá", c.Campus)

	_, err = svc.GetCourse(context.Background(), "c-nope")
	require.ErrorIs(t, err, ErrNotFound)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "course", e.Entity)
	assert.Equal(t, "c-nope", e.Details["id"])
}

func decodeCourse(t *testing.T, body string) CreateCourseInput {
	t.Helper()
	var in CreateCourseInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

const validCourse = `{"title":"Seguridad Móvil","instructor":"Ing. Ruiz","credits":"3","modality":"Virtual",` +
	`"schedule":"Jueves 18:00 - 20:00","campus":"Virtual","startDate":"2025-03-04T20:00:00-05:00","summary":"Amenazas y controles en apps móviles."}`

func TestCourseService_CreateCourse(t *testing.T) {
	svc := seededCourseService(t)
	ctx := context.Background()

	c, err := svc.CreateCourse(ctx, decodeCourse(t, validCourse))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "c-"), c.ID)
	assert.Len(t, c.ID, 10)
	assert.Equal(t, 3, c.Credits)
	assert.Equal(t, "2025-03-05", c.StartDate)
	assert.Equal(t, []string{}, c.Tags)

	stored, err := svc.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seguridad Móvil", stored.Title)

	withID := decodeCourse(t, validCourse)
	id := "  c-inf-001 "
	withID.ID = &id
	_, err = svc.CreateCourse(ctx, withID)
	require.ErrorIs(t, err, ErrConflictDuplicate)
}

func TestCourseService_CreateCourseViolations(t *testing.T) {
	svc := seededCourseService(t)
	tests := []struct {
		name  string
		patch map[string]any
		field string
		code  string
	}{
		{"short id", map[string]any{"id": "ab"}, "id", "too_short"},
		{"short title", map[string]any{"title": "abc"}, "title", "too_short"},
		{"missing instructor", map[string]any{"instructor": ""}, "instructor", "required"},
		{"credits out of range", map[string]any{"credits": 11}, "credits", "out_of_range"},
		{"fractional credits", map[string]any{"credits": 2.5}, "credits", "must_be_integer"},
		{"unknown modality", map[string]any{"modality": "Online"}, "modality", "invalid_choice"},
		{"bad date", map[string]any{"startDate": "next monday"}, "startDate", "invalid_date"},
		{"long summary", map[string]any{"summary": strings.Repeat("s", 281)}, "summary", "too_long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(validCourse), &body))
			for k, v := range tt.patch {
				body[k] = v
			}
			raw, err := json.Marshal(body)
			require.NoError(t, err)

			_, err = svc.CreateCourse(context.Background(), decodeCourse(t, string(raw)))
			require.ErrorIs(t, err, ErrInvalidInput)
			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.code, e.Details[tt.field], "details: %v", e.Details)
		})
	}
}

func TestAnnouncementService_List(t *testing.T) {
	svc := NewAnnouncementService(nil)

	assert.Len(t, svc.List("", -1), 3)
	assert.Len(t, svc.List("", 2), 2)
	assert.Empty(t, svc.List("", 0))

	warnings := svc.List("warning", -1)
	require.Len(t, warnings, 1)
	assert.Equal(t, "a-002", warnings[0].ID)
	assert.Equal(t, "2025-02-03T09:30:00-05:00", warnings[0].PublishedAt.Format("2006-01-02T15:04:05Z07:00"))

	assert.Empty(t, svc.List("critical", -1))
}
