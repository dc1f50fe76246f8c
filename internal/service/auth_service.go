package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/repository"
	"github.com/staff-attendance-api/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// TokenType - тип выдаваемого токена
const TokenType = "Bearer"

// AuthConfig - параметры выдачи токенов
type AuthConfig struct {
	Secret     string
	TTL        time.Duration
	LongTTL    time.Duration
	BcryptCost int
}

// AuthClaims - содержимое токена доступа
type AuthClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService определяет интерфейс аутентификации и управления администраторами
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
	Register(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.AdminResponse, error)
	EnsureInitialAdmin(ctx context.Context, req *dto.RegisterAdminRequest) error
	List(ctx context.Context) ([]dto.AdminResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.AdminResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateAdminRequest) (*dto.AdminResponse, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ChangePassword(ctx context.Context, id int64, req *dto.ChangePasswordRequest) error
	Deactivate(ctx context.Context, id int64) (*dto.AdminResponse, error)
	Reactivate(ctx context.Context, id int64) (*dto.AdminResponse, error)
	Delete(ctx context.Context, id int64) error
}

type authService struct {
	tx               repository.TxManager
	adminRepo        repository.AdminRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	cfg              AuthConfig
	validator        *validation.Validator
	logger           *slog.Logger
	now              func() time.Time
}

// NewAuthService создаёт новый экземпляр сервиса
func NewAuthService(deps Dependencies, cfg AuthConfig) AuthService {
	deps = deps.withDefaults()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		tx:               deps.Tx,
		adminRepo:        deps.Admins,
		userRepo:         deps.Users,
		notificationRepo: deps.Notifications,
		cfg:              cfg,
		validator:        deps.Validator,
		logger:           deps.Logger,
		now:              deps.Now,
	}
}

// Login проверяет пароль и выдаёт токен; срок жизни зависит от remember_me
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "login failed: unknown email", slog.String("email", email))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.WarnContext(ctx, "login failed: wrong password", slog.Int64("admin_id", admin.ID))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.Active {
		s.logger.WarnContext(ctx, "login failed: inactive account", slog.Int64("admin_id", admin.ID))
		return nil, domain.ErrAccountInactive
	}

	ttl := s.cfg.TTL
	if req.RememberMe {
		ttl = s.cfg.LongTTL
	}
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Email: admin.Email,
		Role:  string(admin.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(admin.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.InfoContext(ctx, "admin logged in",
		slog.Int64("admin_id", admin.ID),
		slog.Bool("remember_me", req.RememberMe),
	)

	return &dto.LoginResponse{
		Token:     signed,
		TokenType: TokenType,
		ExpiresIn: int64(ttl / time.Second),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Admin:     toAdminResponse(admin),
	}, nil
}

// Authenticate проверяет токен и что владелец всё ещё активен
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	claims := &AuthClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}

	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", domain.ErrInvalidToken)
		}
		return nil, err
	}
	if !admin.Active {
		return nil, domain.ErrAccountInactive
	}

	return &domain.Principal{ID: admin.ID, Email: admin.Email, Role: admin.Role}, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.AdminResponse, error) {
	admin, err := s.register(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

// EnsureInitialAdmin создаёт администратора при первом запуске; повторный вызов ничего не меняет
func (s *authService) EnsureInitialAdmin(ctx context.Context, req *dto.RegisterAdminRequest) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, strings.TrimSpace(req.Email), nil)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	admin, err := s.register(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil
		}
		return err
	}

	s.logger.InfoContext(ctx, "initial admin created", slog.Int64("admin_id", admin.ID))
	return nil
}

func (s *authService) List(ctx context.Context) ([]dto.AdminResponse, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AdminResponse, len(admins))
	for i := range admins {
		resp[i] = toAdminResponse(&admins[i])
	}
	return resp, nil
}

func (s *authService) GetByID(ctx context.Context, id int64) (*dto.AdminResponse, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

// Update меняет только переданные поля; email проверяется на уникальность среди всех пользователей
func (s *authService) Update(ctx context.Context, id int64, req *dto.UpdateAdminRequest) (*dto.AdminResponse, error) {
	in := dto.UpdateAdminRequest{
		Name:    trimmed(req.Name),
		Surname: trimmed(req.Surname),
		Email:   trimmed(req.Email),
	}
	if err := s.validator.Struct(&in); err != nil {
		return nil, err
	}

	var admin *domain.Admin
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		admin, err = s.adminRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			admin.Name = *in.Name
		}
		if in.Surname != nil {
			admin.Surname = *in.Surname
		}
		if in.Email != nil && *in.Email != admin.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, *in.Email, &id)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, *in.Email)
			}
			admin.Email = *in.Email
		}

		return s.adminRepo.Update(ctx, admin)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "admin updated", slog.Int64("admin_id", id))
	resp := toAdminResponse(admin)
	return &resp, nil
}

// EmailExists проверяет email среди всех учётных записей
func (s *authService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.userRepo.ExistsByEmail(ctx, strings.TrimSpace(email), nil)
}

func (s *authService) ChangePassword(ctx context.Context, id int64, req *dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.OldPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrWrongPassword
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.PasswordHash = string(hash)

	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "admin password changed", slog.Int64("admin_id", id))
	return nil
}

func (s *authService) Deactivate(ctx context.Context, id int64) (*dto.AdminResponse, error) {
	return s.setActive(ctx, id, false)
}

func (s *authService) Reactivate(ctx context.Context, id int64) (*dto.AdminResponse, error) {
	return s.setActive(ctx, id, true)
}

// Delete удаляет администратора и его уведомления; данные сотрудников не затрагиваются
func (s *authService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.adminRepo.GetByID(ctx, id); err != nil {
			return err
		}
		if _, err := s.notificationRepo.DeleteByUserIDs(ctx, []int64{id}); err != nil {
			return err
		}
		return s.adminRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "admin deleted", slog.Int64("admin_id", id))
	return nil
}

func (s *authService) register(ctx context.Context, req *dto.RegisterAdminRequest) (*domain.Admin, error) {
	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(&in); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, in.Email, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.Admin{
		Person: domain.Person{
			Name:    in.Name,
			Surname: in.Surname,
			Email:   in.Email,
			Role:    domain.RoleAdmin,
			Active:  true,
		},
		PasswordHash: string(hash),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "admin registered", slog.Int64("admin_id", admin.ID))
	return admin, nil
}

func (s *authService) setActive(ctx context.Context, id int64, active bool) (*dto.AdminResponse, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	admin.Active = active
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "admin status changed",
		slog.Int64("admin_id", id),
		slog.Bool("active", active),
	)
	resp := toAdminResponse(admin)
	return &resp, nil
}
