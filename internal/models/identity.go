package models

import "time"

// Role разделяет два контура портала: пациенты и врачи.
type Role string

const (
	RolePatient   Role = "patient"
	RoleClinician Role = "clinician"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleClinician
}

type CredentialKind int

const (
	CredentialNone CredentialKind = iota
	// CredentialLegacy — старые записи с кодом в открытом виде (до миграции).
	CredentialLegacy
	CredentialHashed
	CredentialHashedWithDigest
)

// Credential — tagged-вариант хранимого секрета. Legacy/Hashed апгрейдятся
// до HashedWithDigest при первом успешном входе.
type Credential struct {
	Kind      CredentialKind `json:"-"`
	PlainCode string         `json:"-"` // только для Legacy
	Hash      string         `json:"-"`
	Digest    string         `json:"-"`
}

type Identity struct {
	ID            int    `json:"id"`
	Title         string `json:"title,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	Surname       string `json:"surname,omitempty"`
	DisplayName   string `json:"name"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`

	Credential Credential `json:"-"`

	VerifiedAt *time.Time `json:"-"`
}
