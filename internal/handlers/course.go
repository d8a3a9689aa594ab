package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DylanJC13/movil-2/internal/httpx"
	"github.com/DylanJC13/movil-2/internal/services"
)

// listEnvelope is the collection shape of the course board endpoints.
type listEnvelope struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
	Data   any    `json:"data"`
}

type itemEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type CourseHandler struct {
	courses       *services.CourseService
	announcements *services.AnnouncementService
}

func NewCourseHandler(courses *services.CourseService, announcements *services.AnnouncementService) *CourseHandler {
	return &CourseHandler{courses: courses, announcements: announcements}
}

// List handles GET /api/courses?modality=&campus=&tag=&search=.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := h.courses.ListCourses(r.Context(), services.CourseFilter{
		Modality: q.Get("modality"),
		Campus:   q.Get("campus"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope{Status: "ok", Total: len(courses), Data: courses})
}

// View handles GET /api/courses/{id}.
func (h *CourseHandler) View(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemEnvelope{Status: "ok", Data: course})
}

// Create handles POST /api/courses. Validation failures answer 422.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateCourseInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid json body", nil)
		return
	}
	course, err := h.courses.CreateCourse(r.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			writeErrorStatus(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/courses/"+course.ID)
	httpx.JSON(w, http.StatusCreated, itemEnvelope{Status: "ok", Data: course})
}

// Announcements handles GET /api/announcements?level=&limit=.
func (h *CourseHandler) Announcements(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer", map[string]string{"limit": "invalid"})
			return
		}
		limit = n
	}
	items := h.announcements.List(r.URL.Query().Get("level"), limit)
	httpx.JSON(w, http.StatusOK, listEnvelope{Status: "ok", Total: len(items), Data: items})
}
