package dto

import (
	"time"

	"github.com/google/uuid"
)

type CourseResponseDTO struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description,omitempty"`
	Thumbnail        string          `json:"thumbnail,omitempty"`
	Price            float64         `json:"price"`
	DiscountPrice    *float64        `json:"discount_price,omitempty"`
	EffectivePrice   float64         `json:"effective_price"`
	InstructorID     uuid.UUID       `json:"instructor_id"`
	Instructor       *UserSummaryDTO `json:"instructor,omitempty"`
	Category         string          `json:"category"`
	Level            string          `json:"level"`
	Duration         string          `json:"duration,omitempty"`
	LecturesCount    int             `json:"lectures_count"`
	Featured         bool            `json:"featured"`
	Status           string          `json:"status"`
	EnrollmentsCount int             `json:"enrollments_count"`
	Rating           float64         `json:"rating"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CourseSummaryDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

type CourseCreateDTO struct {
	Title            string   `json:"title" binding:"required,min=3,max=200"`
	Slug             string   `json:"slug" binding:"omitempty,slug,max=200"` // generated from the title when empty
	Description      string   `json:"description" binding:"required"`
	ShortDescription string   `json:"short_description" binding:"max=300"`
	Thumbnail        string   `json:"thumbnail" binding:"max=500"`
	Price            float64  `json:"price" binding:"gte=0"`
	DiscountPrice    *float64 `json:"discount_price" binding:"omitempty,gte=0"`
	Category         string   `json:"category" binding:"required,max=100"`
	Level            string   `json:"level" binding:"required,oneof=Beginner Intermediate Advanced"`
	Duration         string   `json:"duration" binding:"max=50"`
	Featured         bool     `json:"featured"`
	Status           string   `json:"status" binding:"omitempty,oneof=draft published archived"`
}

type CourseUpdateDTO struct {
	Title            *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Slug             *string  `json:"slug" binding:"omitempty,slug,max=200"`
	Description      *string  `json:"description" binding:"omitempty,min=1"`
	ShortDescription *string  `json:"short_description" binding:"omitempty,max=300"`
	Thumbnail        *string  `json:"thumbnail" binding:"omitempty,max=500"`
	Price            *float64 `json:"price" binding:"omitempty,gte=0"`
	DiscountPrice    *float64 `json:"discount_price" binding:"omitempty,gte=0"`
	ClearDiscount    bool     `json:"clear_discount"`
	Category         *string  `json:"category" binding:"omitempty,max=100"`
	Level            *string  `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Duration         *string  `json:"duration" binding:"omitempty,max=50"`
	Featured         *bool    `json:"featured"`
	Status           *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

type CourseListQuery struct {
	Category     string `form:"category"`
	Level        string `form:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Search       string `form:"search" binding:"max=100"`
	Featured     *bool  `form:"featured"`
	InstructorID string `form:"instructor_id" binding:"omitempty,uuid"`
	Page         int    `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
