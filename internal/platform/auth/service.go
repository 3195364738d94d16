package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"booklend/internal/platform/db"
	"booklend/internal/platform/ids"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	minPasswordLen = 8
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("authentication failed")
	ErrInvalidInput       = errors.New("invalid input")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, in NewMember) (*Member, error)
	CreateMember(ctx context.Context, in NewMember, isAdmin bool) (*Member, error)
}

type NewMember struct {
	Email       string
	DisplayName string
	Password    string
}

type Service struct {
	store  MemberStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(conn *sqlx.DB, cfg db.AuthConfig) *Service {
	return NewServiceWithStore(NewStore(conn), cfg)
}

func NewServiceWithStore(store MemberStore, cfg db.AuthConfig) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:  store,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Secret() []byte {
	return s.secret
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	m, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(m)
}

// IssueToken signs an HS256 token carrying the member id and role.
func (s *Service) IssueToken(m *Member) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  m.ID,
		"role": m.Role(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// Register creates a regular member. Administrators are only created through CreateMember.
func (s *Service) Register(ctx context.Context, in NewMember) (*Member, error) {
	return s.CreateMember(ctx, in, false)
}

func (s *Service) CreateMember(ctx context.Context, in NewMember, isAdmin bool) (*Member, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.DisplayName)
	if !strings.Contains(email, "@") || name == "" || len(in.Password) < minPasswordLen {
		return nil, ErrInvalidInput
	}

	exists, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	m := &Member{
		ID:           ids.NewULID(now),
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    now,
	}
	if err := s.store.Create(ctx, m); err != nil {
		// メール重複はチェックと INSERT の間に割り込まれた場合
		if db.IsDuplicateKey(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMember(ctx context.Context, id string) (*Member, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
