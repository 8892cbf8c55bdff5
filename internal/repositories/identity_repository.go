package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"clinicportal/internal/models"

	"github.com/lib/pq"
)

var ErrUnknownRole = errors.New("repositories: unknown role")

type IdentityRepository interface {
	Create(role models.Role, identity *models.Identity) error
	GetByID(role models.Role, id int) (*models.Identity, error)
	FindByName(role models.Role, name string) ([]*models.Identity, error)
	FindByEmail(role models.Role, email string) (*models.Identity, error)
	FindByDigest(role models.Role, digest string) (*models.Identity, error)
	// FindLegacyByName — записи без email (до введения email-гейта), для
	// связывания при повторной регистрации.
	FindLegacyByName(role models.Role, name string) (*models.Identity, error)
	UpdateEmail(role models.Role, id int, email string) error
	MarkVerified(role models.Role, id int) error
	// UpdateCredential при конфликте уникальности digest откатывается на
	// хранение только хэша: логин обязан остаться возможным даже для двух
	// legacy-записей, коллидирующих по digest.
	UpdateCredential(role models.Role, id int, hash, digest string) error
}

type identityRepository struct {
	DB *sql.DB
}

func NewIdentityRepository(db *sql.DB) IdentityRepository {
	return &identityRepository{DB: db}
}

func tableFor(role models.Role) (string, error) {
	switch role {
	case models.RolePatient:
		return "patients", nil
	case models.RoleClinician:
		return "clinicians", nil
	}
	return "", ErrUnknownRole
}

const identityCols = `
	id, title, first_name, surname, display_name,
	email, email_verified, verified_at,
	code, code_hash, code_digest
`

func scanIdentity(scan func(dest ...any) error) (*models.Identity, error) {
	i := &models.Identity{}
	var (
		title      sql.NullString
		firstName  sql.NullString
		surname    sql.NullString
		email      sql.NullString
		verified   sql.NullBool
		verifiedAt sql.NullTime
		code       sql.NullString
		codeHash   sql.NullString
		codeDigest sql.NullString
	)
	err := scan(
		&i.ID, &title, &firstName, &surname, &i.DisplayName,
		&email, &verified, &verifiedAt,
		&code, &codeHash, &codeDigest,
	)
	if err != nil {
		return nil, err
	}
	if title.Valid {
		i.Title = title.String
	}
	if firstName.Valid {
		i.FirstName = firstName.String
	}
	if surname.Valid {
		i.Surname = surname.String
	}
	if email.Valid {
		i.Email = email.String
	}
	if verified.Valid {
		i.EmailVerified = verified.Bool
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		i.VerifiedAt = &t
	}

	switch {
	case codeHash.Valid && codeDigest.Valid:
		i.Credential = models.Credential{
			Kind:   models.CredentialHashedWithDigest,
			Hash:   codeHash.String,
			Digest: codeDigest.String,
		}
	case codeHash.Valid:
		i.Credential = models.Credential{Kind: models.CredentialHashed, Hash: codeHash.String}
	case code.Valid && code.String != "":
		i.Credential = models.Credential{Kind: models.CredentialLegacy, PlainCode: code.String}
	default:
		i.Credential = models.Credential{Kind: models.CredentialNone}
	}
	return i, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *identityRepository) Create(role models.Role, identity *models.Identity) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (title, first_name, surname, display_name, email, email_verified)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, table)
	return r.DB.QueryRow(q,
		nullIfEmpty(identity.Title),
		nullIfEmpty(identity.FirstName),
		nullIfEmpty(identity.Surname),
		identity.DisplayName,
		nullIfEmpty(identity.Email),
		identity.EmailVerified,
	).Scan(&identity.ID)
}

func (r *identityRepository) GetByID(role models.Role, id int) (*models.Identity, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, identityCols, table)
	row := r.DB.QueryRow(q, id)
	identity, err := scanIdentity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return identity, err
}

func (r *identityRepository) FindByName(role models.Role, name string) ([]*models.Identity, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE display_name = $1 ORDER BY id`, identityCols, table)
	rows, err := r.DB.Query(q, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, identity)
	}
	return res, rows.Err()
}

func (r *identityRepository) FindByEmail(role models.Role, email string) (*models.Identity, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, identityCols, table)
	row := r.DB.QueryRow(q, email)
	identity, err := scanIdentity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return identity, err
}

func (r *identityRepository) FindByDigest(role models.Role, digest string) (*models.Identity, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE code_digest = $1`, identityCols, table)
	row := r.DB.QueryRow(q, digest)
	identity, err := scanIdentity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return identity, err
}

func (r *identityRepository) FindLegacyByName(role models.Role, name string) (*models.Identity, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE display_name = $1 AND email IS NULL
		ORDER BY id
		LIMIT 1
	`, identityCols, table)
	row := r.DB.QueryRow(q, name)
	identity, err := scanIdentity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return identity, err
}

func (r *identityRepository) UpdateEmail(role models.Role, id int, email string) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET email = $1 WHERE id = $2`, table)
	_, err = r.DB.Exec(q, email, id)
	return err
}

func (r *identityRepository) MarkVerified(role models.Role, id int) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET email_verified = TRUE, verified_at = NOW() WHERE id = $1`, table)
	_, err = r.DB.Exec(q, id)
	return err
}

func (r *identityRepository) UpdateCredential(role models.Role, id int, hash, digest string) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
		UPDATE %s
		SET code_hash = $1, code_digest = $2, code = NULL
		WHERE id = $3
	`, table)
	_, err = r.DB.Exec(q, hash, digest, id)
	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return err
	}

	// digest-конфликт: храним только хэш, чтобы не блокировать вход
	log.Printf("[identity][credential] digest conflict on %s id=%d, storing hash only", table, id)
	fallback := fmt.Sprintf(`
		UPDATE %s
		SET code_hash = $1, code_digest = NULL, code = NULL
		WHERE id = $2
	`, table)
	_, err = r.DB.Exec(fallback, hash, id)
	return err
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
