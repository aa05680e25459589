package domain

import "time"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID     string
	Name   string
	Role   string
	Avatar string
}

// Captcha is a login challenge issued before credentials are checked.
type Captcha struct {
	ID        string
	Code      string
	ExpiresAt time.Time
}

// CaptchaAlphabet omits characters that are easy to confuse (I, 1, O, 0).
const CaptchaAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CaptchaLength is the number of characters in a captcha code.
const CaptchaLength = 6
