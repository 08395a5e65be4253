package model

import (
	"time"
)

// Course represents a sellable course published by an instructor
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	InstructorID uint      `gorm:"not null;index" json:"instructor_id"`
	Title        string    `gorm:"not null" json:"title"`
	Slug         *string   `gorm:"uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price"`

	// Relationships
	Instructor User        `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Lessons    []Lesson    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Classwork  []Classwork `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// Lesson represents a unit of course content
type Lesson struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	CourseID         uint      `gorm:"not null;index" json:"course_id"`
	Title            string    `gorm:"not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	VideoURL         string    `gorm:"type:varchar(1024)" json:"video_url"`
	ColabNotebookURL string    `gorm:"type:varchar(1024)" json:"colab_notebook_url"`
	NotesContent     string    `gorm:"type:text" json:"notes_content"`
	OrderIndex       int       `gorm:"default:0" json:"order_index"`
	IsFreePreview    bool      `gorm:"default:false" json:"is_free_preview"`

	// Relationships
	Course Course      `gorm:"foreignKey:CourseID" json:"-"`
	Clips  []VideoClip `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
}

// VideoClip represents a named segment within a lesson video
type VideoClip struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LessonID     uint      `gorm:"not null;index" json:"lesson_id"`
	Title        string    `gorm:"not null" json:"title"`
	StartSeconds int       `gorm:"not null;default:0" json:"start_seconds"`
	EndSeconds   int       `gorm:"not null;default:0" json:"end_seconds"`
	Notes        string    `gorm:"type:text" json:"notes"`
	OrderIndex   int       `gorm:"default:0" json:"order_index"`
}

// Classwork represents an assignment attached to a course
type Classwork struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueAt       *time.Time `json:"due_at"`
}

// Attachment records a file uploaded (or about to be uploaded) to object storage
type Attachment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Filename        string    `gorm:"not null" json:"filename"`
	URL             string    `gorm:"type:varchar(1024)" json:"url"`
	StorageProvider string    `gorm:"type:varchar(20);default:'local'" json:"storage_provider"`
	ContentType     string    `gorm:"type:varchar(255)" json:"content_type"`
	SizeBytes       *int64    `json:"size_bytes"`
	CreatedByUserID uint      `gorm:"index" json:"created_by_user_id"`
}
