package models

// User is an account record. Immutable after registration except for the
// password hash, which currently has no change flow.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null"                      json:"-"`
}

type Todo struct {
	ID          uint   `gorm:"primaryKey"        json:"id"`
	Title       string `gorm:"not null"          json:"title"`
	Description string `json:"description"`
	Status      string `gorm:"default:not_done"  json:"status"`
	OwnerID     uint   `gorm:"index;not null"    json:"owner_id"`
}

// RefreshToken rows are never deleted: logout flips Revoked and the row stays
// as history. Token holds the full signed string and is the lookup key.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}
