package mechanic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"gorm.io/gorm"
)

// Service 技师领域用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Salary   float64
	Password string
}

func (in RegisterInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Missing data for required field."
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "Not a valid email address."
	}
	if strings.TrimSpace(in.Phone) == "" {
		fields["phone"] = "Missing data for required field."
	}
	if in.Password == "" {
		fields["password"] = "Missing data for required field."
	}
	if in.Salary < 0 {
		fields["salary"] = "Must not be negative."
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

// Register 注册技师。邮箱/手机号全局唯一，冲突返回 Conflict。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Mechanic, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, errs.New(errs.KindConflict, "Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.KindInternal, "lookup mechanic", err)
	}

	phone := strings.TrimSpace(in.Phone)
	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return nil, errs.New(errs.KindConflict, "Phone already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.KindInternal, "lookup mechanic", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "hash password", err)
	}

	m := &Mechanic{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        phone,
		Salary:       in.Salary,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "create mechanic", err)
	}
	return m, nil
}

// Authenticate 登录口令校验；不区分“账号不存在”与“密码错误”。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Mechanic, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	m, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindAuthInvalid, "Invalid credentials")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "lookup mechanic", err)
	}
	if !auth.VerifyPassword(password, m.PasswordHash) {
		return nil, errs.New(errs.KindAuthInvalid, "Invalid credentials")
	}
	return m, nil
}

// Patch 技师更新的白名单字段；nil 字段不变更。
type Patch struct {
	Name     *string  `json:"name"`
	Email    *string  `json:"email"`
	Phone    *string  `json:"phone"`
	Salary   *float64 `json:"salary"`
	Password *string  `json:"password"`
}

// Update 按白名单应用变更；唯一键冲突返回 Conflict。
func (s *Service) Update(ctx context.Context, id uint, p Patch) (*Mechanic, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	m, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindNotFound, "Mechanic not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "lookup mechanic", err)
	}

	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if other, err := s.repo.FindByEmail(ctx, email); err == nil && other.ID != id {
			return nil, errs.New(errs.KindConflict, "Email already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Wrap(errs.KindInternal, "lookup mechanic", err)
		}
		m.Email = email
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		if other, err := s.repo.FindByPhone(ctx, phone); err == nil && other.ID != id {
			return nil, errs.New(errs.KindConflict, "Phone already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Wrap(errs.KindInternal, "lookup mechanic", err)
		}
		m.Phone = phone
	}
	if p.Salary != nil {
		if *p.Salary < 0 {
			return nil, errs.Validation(map[string]string{"salary": "Must not be negative."})
		}
		m.Salary = *p.Salary
	}
	if p.Password != nil {
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, errs.Wrap(errs.KindInternal, "hash password", err)
		}
		m.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "update mechanic", err)
	}
	return m, nil
}

// Delete 硬删除；同时清掉工单关联。
func (s *Service) Delete(ctx context.Context, id uint) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	if _, err := s.repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.KindNotFound, "Mechanic not found")
	} else if err != nil {
		return errs.Wrap(errs.KindInternal, "lookup mechanic", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errs.Wrap(errs.KindInternal, "delete mechanic", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Mechanic, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	mechanics, err := s.repo.List(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "list mechanics", err)
	}
	return mechanics, nil
}

// Statistics 每个技师的工单数（内连接，降序）。
func (s *Service) Statistics(ctx context.Context) ([]Stat, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "mechanic statistics", err)
	}
	return stats, nil
}
