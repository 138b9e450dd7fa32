package model

import "github.com/google/uuid"

type Review struct {
	Base
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_course"`
	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CourseID uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_course;index"`
	Course   *Course   `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Rating   int       `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	Comment  string    `json:"comment,omitempty" gorm:"type:text"`
}
