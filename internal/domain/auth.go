package domain

import "time"

// SubjectType differentiates session holders.
type SubjectType string

const (
	SubjectTypeAdmin  SubjectType = "ADMIN"
	SubjectTypePublic SubjectType = "PUBLIC"
)

// Admin is a moderator account able to manage forum threads.
type Admin struct {
	Email        string
	PasswordHash string
}

// Session describes an issued admin session token.
type Session struct {
	Token     string
	Subject   SubjectType
	SubjectID string
	ExpiresAt time.Time
}
