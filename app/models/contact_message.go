package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	CONTACT_STATUS_NEW    = "new"
	CONTACT_STATUS_READ   = "read"
	CONTACT_STATUS_CLOSED = "closed"
)

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	Email     string    `gorm:"type:varchar(200);index" json:"email" validate:"required,email"`
	Phone     string    `gorm:"type:varchar(50);default:null" json:"phone" validate:"max=50"`
	Message   string    `gorm:"type:text" json:"message" validate:"required,max=5000"`
	Status    string    `gorm:"type:varchar(50);default:'new'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *ContactMessage) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
