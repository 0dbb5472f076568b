package models

import "time"

type ChatMessage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProjectID uint   `json:"project_id" gorm:"not null;index"`
	UserID    uint   `json:"user_id" gorm:"not null"`
	Message   string `json:"message" gorm:"not null;type:text"`

	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
