package models

import "strings"

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Email      string `gorm:"unique;not null" json:"email"`
	Password   string `gorm:"not null" json:"-"`
	IsPromoter bool   `gorm:"not null;default:false" json:"is_promoter"`
}

func (User) TableName() string {
	return "users"
}

// IsBootstrapPromoter reports whether email is the one address that is
// granted promoter status on registration. The match is exact.
func IsBootstrapPromoter(email, promoterEmail string) bool {
	return promoterEmail != "" && strings.TrimSpace(email) == promoterEmail
}
