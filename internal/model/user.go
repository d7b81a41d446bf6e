package model

// User account, table users
type User struct {
	UserID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name          string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email         string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash  string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role          string `gorm:"type:varchar(20);not null;default:'USER'"       json:"role"`
	EncryptedName string `gorm:"type:text;not null;default:''"                  json:"-"`
	BaseModel
}

// TableName table name
func (User) TableName() string { return "users" }
