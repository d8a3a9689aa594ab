package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/DylanJC13/movil-2/internal/validation"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CourseService struct {
	store store.CourseStore
}

func NewCourseService(cs store.CourseStore) *CourseService {
	return &CourseService{store: cs}
}

// CourseView is the wire shape of a course; dates are calendar days.
type CourseView struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Instructor string   `json:"instructor"`
	Credits    int      `json:"credits"`
	Modality   string   `json:"modality"`
	Schedule   string   `json:"schedule"`
	Campus     string   `json:"campus"`
	StartDate  string   `json:"startDate"`
	Tags       []string `json:"tags"`
	Summary    string   `json:"summary"`
}

func courseView(c *models.Course) CourseView {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return CourseView{
		ID:         c.ID,
		Title:      c.Title,
		Instructor: c.Instructor,
		Credits:    c.Credits,
		Modality:   c.Modality,
		Schedule:   c.Schedule,
		Campus:     c.Campus,
		StartDate:  c.StartDate.UTC().Format(dateLayout),
		Tags:       tags,
		Summary:    c.Summary,
	}
}

// CourseFilter narrows a course listing. Empty fields match everything and
// comparisons ignore case. Search looks into title and summary.
type CourseFilter struct {
	Modality string
	Campus   string
	Tag      string
	Search   string
}

func (f CourseFilter) matches(c *models.Course) bool {
	if f.Modality != "" && !strings.EqualFold(c.Modality, f.Modality) {
		return false
	}
	if f.Campus != "" && !strings.EqualFold(c.Campus, f.Campus) {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range c.Tags {
			if strings.EqualFold(t, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Title), q) && !strings.Contains(strings.ToLower(c.Summary), q) {
			return false
		}
	}
	return true
}

// ListCourses returns the matching courses, earliest start first.
func (s *CourseService) ListCourses(ctx context.Context, f CourseFilter) ([]CourseView, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, fromStore("list courses", err)
	}
	out := make([]CourseView, 0, len(courses))
	for i := range courses {
		if f.matches(&courses[i]) {
			out = append(out, courseView(&courses[i]))
		}
	}
	return out, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id string) (*CourseView, error) {
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, fromStore("get course", err)
	}
	if c == nil {
		return nil, &Error{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("course %s not found", id),
			Entity:  "course",
			Details: map[string]string{"id": id},
		}
	}
	v := courseView(c)
	return &v, nil
}

// CreateCourseInput is the body of POST /api/courses. Credits accepts a
// number or a numeric string.
type CreateCourseInput struct {
	ID         *string     `json:"id"`
	Title      string      `json:"title"`
	Instructor string      `json:"instructor"`
	Credits    json.Number `json:"credits"`
	Modality   string      `json:"modality"`
	Schedule   string      `json:"schedule"`
	Campus     string      `json:"campus"`
	StartDate  string      `json:"startDate"`
	Tags       []string    `json:"tags"`
	Summary    string      `json:"summary"`
}

// parseStartDate accepts a calendar day or an RFC 3339 timestamp, which is
// reduced to its UTC day.
func parseStartDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(dateLayout, raw); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func (in CreateCourseInput) toModel() (*models.Course, error) {
	v := validation.Violations{}

	var id string
	if in.ID != nil {
		id = strings.TrimSpace(*in.ID)
		validation.LenRange("id", id, 3, 30, v)
	}
	validation.Required("title", in.Title, v)
	validation.LenRange("title", in.Title, 4, 80, v)
	validation.Required("instructor", in.Instructor, v)
	validation.LenRange("instructor", in.Instructor, 3, 80, v)

	credits, err := in.Credits.Int64()
	switch {
	case in.Credits == "":
		v["credits"] = "required"
	case err != nil:
		v["credits"] = "must_be_integer"
	default:
		validation.IntRange("credits", int(credits), 1, 10, v)
	}

	validation.Required("modality", in.Modality, v)
	validation.OneOf("modality", in.Modality, models.Modalities, v)
	validation.Required("schedule", in.Schedule, v)
	validation.LenRange("schedule", in.Schedule, 4, 120, v)
	validation.Required("campus", in.Campus, v)
	validation.LenRange("campus", in.Campus, 2, 50, v)
	validation.Required("summary", in.Summary, v)
	validation.LenRange("summary", in.Summary, 10, 280, v)

	start, ok := parseStartDate(in.StartDate)
	if in.StartDate == "" {
		v["startDate"] = "required"
	} else if !ok {
		v["startDate"] = "invalid_date"
	}

	if !v.Empty() {
		return nil, InvalidInput("invalid course", v)
	}

	if id == "" {
		id = "c-" + uuid.NewString()[:8]
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Course{
		ID:         id,
		Title:      in.Title,
		Instructor: in.Instructor,
		Credits:    int(credits),
		Modality:   in.Modality,
		Schedule:   in.Schedule,
		Campus:     in.Campus,
		StartDate:  start,
		Tags:       tags,
		Summary:    in.Summary,
	}, nil
}

// CreateCourse validates and stores a course, generating an id when none is given.
func (s *CourseService) CreateCourse(ctx context.Context, in CreateCourseInput) (*CourseView, error) {
	c, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCourse(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &Error{
				Kind:    KindConflictDuplicate,
				Message: fmt.Sprintf("a course with id %s already exists", c.ID),
				Details: map[string]string{"id": "already_exists"},
				Err:     err,
			}
		}
		return nil, fromStore("create course", err)
	}
	v := courseView(c)
	return &v, nil
}

// EnsureSeeded fills an empty catalog with the default courses and reports
// how many were inserted.
func (s *CourseService) EnsureSeeded(ctx context.Context) (int, error) {
	n, err := s.store.CountCourses(ctx)
	if err != nil {
		return 0, fromStore("count courses", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, c := range defaultCourses() {
		if err := s.store.CreateCourse(ctx, &c); err != nil {
			return 0, fromStore("seed course "+c.ID, err)
		}
	}
	return len(defaultCourses()), nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func defaultCourses() []models.Course {
	return []models.Course{
		{
			ID: "c-inf-001", Title: "Computación Móvil", Instructor: "Ing. Marcela Prieto", Credits: 3,
			Modality: models.ModalityOnSite, Schedule: "Lunes y Miércoles 08:00 - 10:00", Campus: "Neiva",
			StartDate: day(2025, time.February, 10), Tags: []string{"android", "pwa", "rest"},
			Summary: "Diseño de soluciones móviles con énfasis en PWAs y servicios REST seguros.",
		},
		{
			ID: "c-inf-002", Title: "Arquitectura de Software Empresarial", Instructor: "MSc. José Delgado", Credits: 4,
			Modality: models.ModalityVirtual, Schedule: "Martes y Jueves 18:00 - 21:00", Campus: "Virtual",
			StartDate: day(2025, time.February, 12), Tags: []string{"microservicios", "integraciones", "cloud"},
			Summary: "Patrones arquitectónicos para plataformas escalables orientadas a servicios.",
		},
		{
			ID: "c-inf-003", Title: "UX para Aplicaciones Híbridas", Instructor: "Esp. Camila Coy", Credits: 2,
			Modality: models.ModalityHybrid, Schedule: "Viernes 14:00 - 18:00", Campus: "Bogotá",
			StartDate: day(2025, time.February, 14), Tags: []string{"ux", "design-systems"},
			Summary: "Buenas prácticas de diseño para aplicaciones móviles y PWAs inclusivas.",
		},
		{
			ID: "c-inf-004", Title: "Laboratorio de Integración Continua", Instructor: "Ing. Tatiana Núñez", Credits: 1,
			Modality: models.ModalityRemote, Schedule: "Sábados 09:00 - 12:00", Campus: "Virtual",
			StartDate: day(2025, time.February, 15), Tags: []string{"devops", "ci/cd", "testing"},
			Summary: "Implementación de pipelines automatizados y despliegues seguros.",
		},
	}
}
