package models

import "time"

// PreAuth — транзитное состояние после клика по ссылке из письма.
// Само по себе входом не является: только открывает шаг set-code / enter-code.
type PreAuth struct {
	Role       Role      `json:"role"`
	IdentityID int       `json:"identity_id"`
	GrantedAt  time.Time `json:"granted_at"`
}

// Session — серверное состояние, живёт в Redis (общая для всех процессов).
type Session struct {
	ID            string    `json:"-"`
	Role          Role      `json:"role,omitempty"`
	IdentityID    int       `json:"identity_id,omitempty"`
	DisplayName   string    `json:"name,omitempty"`
	Authenticated bool      `json:"authenticated"`
	LastActivity  time.Time `json:"last_activity"`

	PreAuth *PreAuth `json:"pre_auth,omitempty"`
}

// LockState — пер-ролевой счётчик неудачных входов.
type LockState struct {
	Role        Role      `json:"role"`
	FailCount   int       `json:"fail_count"`
	LockedUntil time.Time `json:"locked_until"`
}
