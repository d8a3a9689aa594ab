package models

import "time"

// Course modalities accepted by the catalog.
const (
	ModalityOnSite  = "Presencial"
	ModalityVirtual = "Virtual"
	ModalityHybrid  = "Híbrido"
	ModalityRemote  = "Remoto"
)

var Modalities = []string{ModalityOnSite, ModalityVirtual, ModalityHybrid, ModalityRemote}

// Course is an entry of the academic course catalog. IDs are chosen by the
// client or generated as c-xxxxxxxx.
type Course struct {
	ID         string    `gorm:"primaryKey;size:30" json:"id"`
	Title      string    `gorm:"size:80;not null" json:"title"`
	Instructor string    `gorm:"size:80;not null" json:"instructor"`
	Credits    int       `gorm:"not null;check:chk_courses_credits,credits BETWEEN 1 AND 10" json:"credits"`
	Modality   string    `gorm:"size:20;not null" json:"modality"`
	Schedule   string    `gorm:"size:120;not null" json:"schedule"`
	Campus     string    `gorm:"size:50;not null" json:"campus"`
	StartDate  time.Time `gorm:"type:date;not null;index" json:"start_date"`
	Tags       []string  `gorm:"type:text;serializer:json;not null" json:"tags"`
	Summary    string    `gorm:"size:280;not null" json:"summary"`
}
