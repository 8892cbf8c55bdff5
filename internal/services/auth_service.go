package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"clinicportal/internal/models"
	"clinicportal/internal/repositories"
	"clinicportal/internal/secrets"
)

// PreAuthValidity — окно между кликом по ссылке и вводом кода.
const PreAuthValidity = 10 * time.Minute

// AuthService — машина состояний входа:
// Anonymous -> EmailPending -> PreAuthorized -> Authenticated,
// поверх логина — пер-ролевой lockout.
type AuthService interface {
	// StartRegistration связывает identity с email (по email, потом по
	// legacy-имени без email, иначе создаёт) и шлёт ссылку подтверждения.
	StartRegistration(ctx context.Context, role models.Role, title, firstName, surname, email string) error
	// RedeemVerification гасит токен из письма: помечает email подтверждённым
	// и выдаёт pre-authorization со свежим timestamp. Повторный клик в окне
	// действия безопасен.
	RedeemVerification(ctx context.Context, sess *models.Session, role models.Role, token string) error
	// CompleteRegistration — путь register: имя + новый 6-значный код под
	// действующей pre-authorization.
	CompleteRegistration(ctx context.Context, sess *models.Session, role models.Role, name, code string) error
	// Login — путь login: имя + код против сохранённого хэша (или
	// legacy-кода), с последующим апгрейдом учётки.
	Login(ctx context.Context, sess *models.Session, role models.Role, name, code string) error
	Logout(ctx context.Context, sess *models.Session) error
}

type authService struct {
	identities repositories.IdentityRepository
	sessions   repositories.SessionRepository
	codes      *secrets.CodeService
	tokens     TokenService
	emails     EmailService
	baseURL    string
	now        func() time.Time
}

func NewAuthService(
	identities repositories.IdentityRepository,
	sessions repositories.SessionRepository,
	codes *secrets.CodeService,
	tokens TokenService,
	emails EmailService,
	baseURL string,
) AuthService {
	return &authService{
		identities: identities,
		sessions:   sessions,
		codes:      codes,
		tokens:     tokens,
		emails:     emails,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

func validCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func displayName(firstName, surname string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(surname))
}

// ================== РЕГИСТРАЦИЯ: EMAIL-ГЕЙТ ==================

func (s *authService) StartRegistration(ctx context.Context, role models.Role, title, firstName, surname, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	name := displayName(firstName, surname)
	if !role.Valid() || name == "" || email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	identity, err := s.identities.FindByEmail(role, email)
	if err != nil {
		return fmt.Errorf("find by email: %w", err)
	}
	if identity == nil {
		// legacy-запись без email связываем по имени
		identity, err = s.identities.FindLegacyByName(role, name)
		if err != nil {
			return fmt.Errorf("find legacy: %w", err)
		}
		if identity != nil {
			if err := s.identities.UpdateEmail(role, identity.ID, email); err != nil {
				if repositories.IsUniqueViolation(err) {
					return fmt.Errorf("%w: email already in use", ErrConflict)
				}
				return fmt.Errorf("link email: %w", err)
			}
			identity.Email = email
		}
	}
	if identity == nil {
		identity = &models.Identity{
			Title:       strings.TrimSpace(title),
			FirstName:   strings.TrimSpace(firstName),
			Surname:     strings.TrimSpace(surname),
			DisplayName: name,
			Email:       email,
		}
		if err := s.identities.Create(role, identity); err != nil {
			if repositories.IsUniqueViolation(err) {
				return fmt.Errorf("%w: email already in use", ErrConflict)
			}
			return fmt.Errorf("create identity: %w", err)
		}
	}

	token, err := s.tokens.Issue(role, identity.ID, email)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	verifyURL := fmt.Sprintf("%s/%s/verify?token=%s", s.baseURL, role, url.QueryEscape(token))

	if s.emails != nil {
		if err := s.emails.SendVerificationEmail(email, identity.DisplayName, verifyURL); err != nil {
			// не раскрываем получателю судьбу письма
			log.Printf("[auth][register-start] failed to send verification email to %s: %v", email, err)
		}
	}
	log.Printf("[auth][register-start] role=%s identity_id=%d email link dispatched", role, identity.ID)
	return nil
}

func (s *authService) RedeemVerification(ctx context.Context, sess *models.Session, role models.Role, token string) error {
	identityID, email, err := s.tokens.Redeem(token, role)
	if err != nil {
		return err // ErrTokenExpired | ErrTokenInvalid
	}

	identity, err := s.identities.GetByID(role, identityID)
	if err != nil {
		return fmt.Errorf("get identity: %w", err)
	}
	if identity == nil {
		return ErrNotFound
	}
	if identity.Email != "" && identity.Email != email {
		// email сменился после выпуска токена
		return ErrTokenInvalid
	}

	if !identity.EmailVerified {
		if err := s.identities.MarkVerified(role, identity.ID); err != nil {
			return fmt.Errorf("mark verified: %w", err)
		}
	}

	// pre-authorization, не полноценная сессия: каждый redeem — свежий timestamp
	sess.PreAuth = &models.PreAuth{
		Role:       role,
		IdentityID: identity.ID,
		GrantedAt:  s.now(),
	}
	if err := s.persist(ctx, sess); err != nil {
		return err
	}

	log.Printf("[auth][verify] role=%s identity_id=%d email verified, pre-auth granted", role, identity.ID)
	return nil
}

func (s *authService) validPreAuth(sess *models.Session, role models.Role) *models.PreAuth {
	pa := sess.PreAuth
	if pa == nil || pa.Role != role {
		return nil
	}
	if s.now().Sub(pa.GrantedAt) > PreAuthValidity {
		return nil
	}
	return pa
}

// ================== РЕГИСТРАЦИЯ: SET-CODE ==================

func (s *authService) CompleteRegistration(ctx context.Context, sess *models.Session, role models.Role, name, code string) error {
	name = strings.TrimSpace(name)
	if !role.Valid() || name == "" || !validCode(code) {
		return fmt.Errorf("%w: full name and 6-digit code required", ErrValidation)
	}

	pa := s.validPreAuth(sess, role)
	if pa == nil {
		return fmt.Errorf("%w: email verification required", ErrForbidden)
	}

	identity, err := s.identities.GetByID(role, pa.IdentityID)
	if err != nil {
		return fmt.Errorf("get identity: %w", err)
	}
	if identity == nil {
		return ErrNotFound
	}
	if identity.DisplayName != name {
		return fmt.Errorf("%w: name does not match the verified identity", ErrForbidden)
	}

	// глобальная уникальность кода внутри роли
	digest := s.codes.Digest(code)
	other, err := s.identities.FindByDigest(role, digest)
	if err != nil {
		return fmt.Errorf("find by digest: %w", err)
	}
	if other != nil && other.ID != identity.ID {
		return fmt.Errorf("%w: this code is already used, choose another one", ErrConflict)
	}

	hash, err := s.codes.Hash(code)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	if err := s.identities.UpdateCredential(role, identity.ID, hash, digest); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	if err := s.authenticate(ctx, sess, role, identity); err != nil {
		return err
	}
	log.Printf("[auth][register] success role=%s identity_id=%d", role, identity.ID)
	return nil
}

// ================== ЛОГИН ==================

func (s *authService) Login(ctx context.Context, sess *models.Session, role models.Role, name, code string) error {
	name = strings.TrimSpace(name)
	if !role.Valid() || name == "" || !validCode(code) {
		return fmt.Errorf("%w: full name and 6-digit code required", ErrValidation)
	}

	// lockout раньше любой проверки корректности
	lock, err := s.sessions.LoginLocked(ctx, role)
	if err != nil {
		return fmt.Errorf("lock check: %w", err)
	}
	if lock != nil {
		return ErrTooManyAttempts
	}

	candidates, err := s.identities.FindByName(role, name)
	if err != nil {
		return fmt.Errorf("find by name: %w", err)
	}

	matched := s.matchCredential(candidates, code)
	if matched == nil {
		state, ferr := s.sessions.FailLogin(ctx, role)
		if ferr != nil {
			log.Printf("[auth][login] fail counter error role=%s: %v", role, ferr)
		} else if !state.LockedUntil.IsZero() {
			log.Printf("[auth][login] lockout engaged role=%s until=%s", role, state.LockedUntil.Format(time.RFC3339))
		}
		return ErrUnauthorized
	}

	// дальше — не подбор кода, счётчик не трогаем
	if !matched.EmailVerified {
		return fmt.Errorf("%w: email not verified", ErrForbidden)
	}
	pa := s.validPreAuth(sess, role)
	if pa == nil || pa.IdentityID != matched.ID {
		return fmt.Errorf("%w: verification link required before login", ErrForbidden)
	}

	// опортунистический апгрейд Legacy/Hashed до HashedWithDigest
	if matched.Credential.Kind != models.CredentialHashedWithDigest {
		if err := s.upgradeCredential(role, matched, code); err != nil {
			log.Printf("[auth][login] credential upgrade failed identity_id=%d: %v", matched.ID, err)
		}
	}

	if err := s.sessions.ResetFailures(ctx, role); err != nil {
		log.Printf("[auth][login] reset failures error role=%s: %v", role, err)
	}
	if err := s.authenticate(ctx, sess, role, matched); err != nil {
		return err
	}
	log.Printf("[auth][login] success role=%s identity_id=%d", role, matched.ID)
	return nil
}

// matchCredential проверяет код против каждого кандидата: bcrypt для
// хэшированных записей, прямое равенство для немигрированных legacy.
func (s *authService) matchCredential(candidates []*models.Identity, code string) *models.Identity {
	for _, c := range candidates {
		switch c.Credential.Kind {
		case models.CredentialHashed, models.CredentialHashedWithDigest:
			if s.codes.Verify(c.Credential.Hash, code) {
				return c
			}
		case models.CredentialLegacy:
			if c.Credential.PlainCode == code {
				return c
			}
		}
	}
	return nil
}

func (s *authService) upgradeCredential(role models.Role, identity *models.Identity, code string) error {
	hash, err := s.codes.Hash(code)
	if err != nil {
		return err
	}
	// конфликт digest репозиторий гасит сам (хранит только хэш)
	return s.identities.UpdateCredential(role, identity.ID, hash, s.codes.Digest(code))
}

// ================== СЕССИЯ ==================

func (s *authService) authenticate(ctx context.Context, sess *models.Session, role models.Role, identity *models.Identity) error {
	sess.Role = role
	sess.IdentityID = identity.ID
	sess.DisplayName = identity.DisplayName
	sess.Authenticated = true
	sess.PreAuth = nil
	return s.persist(ctx, sess)
}

func (s *authService) persist(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		if err := s.sessions.Create(ctx, sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	}
	if err := s.sessions.Touch(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *authService) Logout(ctx context.Context, sess *models.Session) error {
	if sess.ID != "" {
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	*sess = models.Session{}
	return nil
}
