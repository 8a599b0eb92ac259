package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsSuperuser  bool   `gorm:"default:false"            json:"is_superuser"`
	// Secondary credential for the admin verification step, one per admin
	// account instead of a process-wide shared secret.
	AdminKeyHash string `json:"-"`
}

type Instructor struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"not null"                 json:"name"`
	Profession   string  `gorm:"not null"                 json:"profession"`
	About        string  `json:"about"`
	Email        string  `gorm:"uniqueIndex;not null"     json:"email"`
	PhoneNo      string  `json:"phone_no"`
	Rating       float64 `json:"rating"`
	ProfileImage string  `json:"profile_image,omitempty"`
}

type Course struct {
	ID                  uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string      `gorm:"not null"                 json:"name"`
	ShortDescription    string      `json:"short_description"`
	LongDescription     string      `json:"long_description"`
	Category            string      `gorm:"not null"                 json:"category"`
	Subcategory         string      `json:"subcategory,omitempty"`
	LearningOutcomes    string      `json:"learning_outcomes"`
	Price               float64     `gorm:"not null"                 json:"price"`
	OldPrice            float64     `json:"old_price"`
	DiscountPercent     uint        `json:"discount_percent"`
	InstructorID        *uint       `gorm:"index"                    json:"instructor_id,omitempty"`
	Instructor          *Instructor `gorm:"constraint:OnDelete:CASCADE" json:"instructor,omitempty"`
	Duration            string      `json:"duration"`
	StudentsEnrolled    uint        `json:"students_enrolled"`
	Language            string      `json:"language"`
	Certification       string      `json:"certification"`
	Rating              float64     `json:"rating"`
	PromoVideo          string      `json:"promo_video,omitempty"`
	TechnologiesCovered string      `json:"technologies_covered"`
	Badge               string      `json:"badge,omitempty"`
	Level               string      `json:"level,omitempty"`
	LessonsCount        uint        `gorm:"default:0"                json:"lessons_count"`
}

type CartItem struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"                        json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_cart_user_course"       json:"user_id"`
	CourseID uint      `gorm:"not null;uniqueIndex:idx_cart_user_course"       json:"course_id"`
	Course   Course    `gorm:"constraint:OnDelete:CASCADE"                     json:"course"`
	AddedAt  time.Time `gorm:"autoCreateTime"                                  json:"added_at"`
}

// Checkout is an immutable purchase record; Price is the course price
// captured inside the checkout transaction, not recomputed later.
type Checkout struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID        uint      `gorm:"index;not null"              json:"user_id"`
	CourseID      uint      `gorm:"not null"                    json:"course_id"`
	Course        Course    `gorm:"constraint:OnDelete:CASCADE" json:"course"`
	Price         float64   `gorm:"not null"                    json:"price"`
	PaymentMethod string    `gorm:"not null;default:upi"        json:"payment_method"`
	CreatedAt     time.Time `gorm:"autoCreateTime"              json:"created_at"`
}

type Favorite struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"                  json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_fav_user_course"  json:"user_id"`
	CourseID uint   `gorm:"not null;uniqueIndex:idx_fav_user_course"  json:"course_id"`
	Course   Course `gorm:"constraint:OnDelete:CASCADE"               json:"course"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"not null"                 json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `gorm:"not null"                 json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime"           json:"created_at"`
}

type Subscriber struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	SubscribedAt time.Time `gorm:"autoCreateTime"           json:"subscribed_at"`
}
