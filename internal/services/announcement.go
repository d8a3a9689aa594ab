package services

import "time"

// Announcement is a notice on the course board. Level is one of info,
// warning or success.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Level       string    `json:"level"`
	PublishedAt time.Time `json:"publishedAt"`
}

// AnnouncementService serves a fixed, read-only board.
type AnnouncementService struct {
	items []Announcement
}

// NewAnnouncementService serves items, or the default board when items is nil.
func NewAnnouncementService(items []Announcement) *AnnouncementService {
	if items == nil {
		items = defaultAnnouncements()
	}
	return &AnnouncementService{items: items}
}

// List returns announcements in board order, filtered by level when set.
// A negative limit returns all of them.
func (s *AnnouncementService) List(level string, limit int) []Announcement {
	out := make([]Announcement, 0, len(s.items))
	for _, a := range s.items {
		if level != "" && a.Level != level {
			continue
		}
		if limit >= 0 && len(out) == limit {
			break
		}
		out = append(out, a)
	}
	return out
}

var bogota = time.FixedZone("-05:00", -5*60*60)

func defaultAnnouncements() []Announcement {
	return []Announcement{
		{
			ID: "a-001", Title: "Taller PWA", Level: "info",
			Content:     "El viernes tendremos un laboratorio adicional para terminar el manifiesto web y pruebas offline.",
			PublishedAt: time.Date(2025, time.February, 1, 10, 0, 0, 0, bogota),
		},
		{
			ID: "a-002", Title: "Entrega 1 Backend", Level: "warning",
			Content:     "Sube tu API REST a GitHub y registra las rutas principales en el classroom.",
			PublishedAt: time.Date(2025, time.February, 3, 9, 30, 0, 0, bogota),
		},
		{
			ID: "a-003", Title: "Actualización tokens", Level: "success",
			Content:     "Revisa el nuevo instructivo para generar llaves de acceso de manera segura.",
			PublishedAt: time.Date(2025, time.February, 5, 12, 0, 0, 0, bogota),
		},
	}
}
