package model

import "net/url"

// Session is the result of exchanging a device ID with the backend.
//
// ID is opaque to the client. The backend issues it as a wallet URL that
// the player opens to approve transactions, see ApprovalURL.
type Session struct {
	ID         string `json:"session"`
	LoginURI   string `json:"uri"`
	NeedsLogin bool   `json:"login"`
}

// IsZero reports whether no session has been established.
func (s Session) IsZero() bool {
	return s.ID == ""
}

// ApprovalURL returns the session value as a launchable URL. ok is false
// when the session is not an absolute URL.
func (s Session) ApprovalURL() (string, bool) {
	u, err := url.Parse(s.ID)
	if err != nil || u.Scheme == "" {
		return "", false
	}
	return s.ID, true
}
