package models

import "time"

// TokenResponse is the body returned by POST /generateToken
type TokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"` // epoch milliseconds
	SSL     bool   `json:"ssl"`
}

// ExpiresAt converts the portal's millisecond expiry into a time.
func (t TokenResponse) ExpiresAt() time.Time {
	if t.Expires == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.Expires)
}

// SelfResponse is the subset of GET /community/self used to resolve the acting user.
type SelfResponse struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	OrgID    string `json:"orgId"`
}
