package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Service управляет пользователями: регистрация, чтение, удаление.
type Service struct {
	txm    domain.TxManager
	logger *log.Entry
}

// NewService создаёт сервис пользователей.
func NewService(txm domain.TxManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "user-service")
	}
	return &Service{txm: txm, logger: logger}
}

// RegisterInput — данные регистрации нового пользователя.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	IsAdmin   bool
	Street    string
	Apartment string
	City      string
	Zip       string
	Country   string
}

// Register создаёт пользователя. Email уникален без учёта регистра;
// пароль хранится только как bcrypt-хеш.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if in.Name == "" {
		return domain.User{}, domain.ErrUserNameRequired
	}
	if in.Email == "" {
		return domain.User{}, domain.ErrUserEmailRequired
	}
	if in.Password == "" {
		return domain.User{}, domain.ErrUserPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		IsAdmin:      in.IsAdmin,
		Street:       in.Street,
		Apartment:    in.Apartment,
		City:         in.City,
		Zip:          in.Zip,
		Country:      in.Country,
	}

	err = s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Users().GetByEmail(in.Email); err == nil {
			return fmt.Errorf("email %s: %w", in.Email, domain.ErrEmailTaken)
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
		return tx.Users().Create(user)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.WithFields(log.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("user registered")
	return user, nil
}

// Get возвращает пользователя по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		user, err = tx.Users().Get(id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		users, err = tx.Users().List()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete удаляет пользователя. Его заказы остаются: ссылки на пользователя
// разворачиваются при чтении и деградируют до пустого значения.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		return tx.Users().Delete(id)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("user_id", id).Info("user deleted")
	return nil
}
