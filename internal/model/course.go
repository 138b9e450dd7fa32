package model

import "github.com/google/uuid"

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

const (
	LectureTypeVideo      = "video"
	LectureTypeQuiz       = "quiz"
	LectureTypeAssignment = "assignment"
	LectureTypeText       = "text"
)

type Course struct {
	Base
	Title            string    `json:"title" gorm:"not null"`
	Slug             string    `json:"slug" gorm:"not null;uniqueIndex"`
	Description      string    `json:"description" gorm:"type:text;not null"`
	ShortDescription string    `json:"short_description,omitempty"`
	Thumbnail        string    `json:"thumbnail,omitempty"`
	Price            float64   `json:"price" gorm:"not null;default:0;check:chk_courses_price,price >= 0"`
	DiscountPrice    *float64  `json:"discount_price,omitempty"`
	InstructorID     uuid.UUID `json:"instructor_id" gorm:"type:uuid;not null;index"`
	Instructor       *User     `json:"-" gorm:"foreignKey:InstructorID;constraint:OnDelete:RESTRICT"`
	Category         string    `json:"category" gorm:"not null;index"`
	Level            string    `json:"level" gorm:"not null"` // Beginner, Intermediate, Advanced
	Duration         string    `json:"duration,omitempty"`
	LecturesCount    int       `json:"lectures_count" gorm:"not null;default:0"`
	Featured         bool      `json:"featured" gorm:"not null;default:false"`
	Status           string    `json:"status" gorm:"not null;default:'draft';index"`
	EnrollmentsCount int       `json:"enrollments_count" gorm:"not null;default:0"`
	Rating           float64   `json:"rating" gorm:"not null;default:0"`
	Sections         []Section `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// EffectivePrice is what a learner pays: the discount when one is set.
func (c *Course) EffectivePrice() float64 {
	if c.DiscountPrice != nil {
		return *c.DiscountPrice
	}
	return c.Price
}

func (c *Course) IsFree() bool { return c.EffectivePrice() <= 0 }

func (c *Course) IsPublished() bool { return c.Status == CourseStatusPublished }

type Section struct {
	Base
	CourseID uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_sections_course_order"`
	Title    string    `json:"title" gorm:"not null"`
	Order    int       `json:"order" gorm:"column:sort_order;not null;uniqueIndex:idx_sections_course_order"`
	Lectures []Lecture `json:"lectures,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
}

type Lecture struct {
	Base
	SectionID   uuid.UUID `json:"section_id" gorm:"type:uuid;not null;uniqueIndex:idx_lectures_section_order"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Type        string    `json:"type" gorm:"not null"` // video, quiz, assignment, text
	Content     string    `json:"content" gorm:"type:text;not null"`
	Duration    string    `json:"duration,omitempty"`
	Preview     bool      `json:"preview" gorm:"not null;default:false"`
	Order       int       `json:"order" gorm:"column:sort_order;not null;uniqueIndex:idx_lectures_section_order"`
}
