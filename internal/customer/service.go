package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/MechanicWorks/MechanicWorks/internal/common/middleware"
	"github.com/MechanicWorks/MechanicWorks/internal/ticket"
	"gorm.io/gorm"
)

// Service 客户领域用例。my-tickets 走 60s TTL 读缓存，
// 不做主动失效，过期窗口内允许读到旧值。
type Service struct {
	repo    *Repo
	tickets *ticket.Service
	cache   *middleware.TTLCache
}

func NewService(repo *Repo, tickets *ticket.Service, cache *middleware.TTLCache) *Service {
	return &Service{repo: repo, tickets: tickets, cache: cache}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
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
	if in.Password == "" {
		fields["password"] = "Missing data for required field."
	}
	if strings.TrimSpace(in.Phone) == "" {
		fields["phone"] = "Missing data for required field."
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

// Register 注册客户；邮箱全局唯一，冲突返回 Conflict（其余字段不影响该判定）。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Customer, error) {
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
		return nil, errs.Wrap(errs.KindInternal, "lookup customer", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "hash password", err)
	}

	c := &Customer{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "create customer", err)
	}
	return c, nil
}

// Authenticate 登录口令校验；不区分“账号不存在”与“密码错误”。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.New(errs.KindAuthInvalid, "Invalid credentials")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "lookup customer", err)
	}
	if !auth.VerifyPassword(password, c.PasswordHash) {
		return nil, errs.New(errs.KindAuthInvalid, "Invalid credentials")
	}
	return c, nil
}

// Page 分页结果。
type Page struct {
	Customers []Customer `json:"customers"`
	Total     int64      `json:"total"`
	Pages     int64      `json:"pages"`
}

// List 分页列表。
func (s *Service) List(ctx context.Context, page, perPage int) (*Page, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 200 {
		perPage = 10
	}

	customers, total, err := s.repo.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "list customers", err)
	}
	if customers == nil {
		customers = []Customer{}
	}

	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return &Page{Customers: customers, Total: total, Pages: pages}, nil
}

// MyTickets 客户自己的工单列表。命中缓存直接返回；未命中回源并写缓存。
func (s *Service) MyTickets(ctx context.Context, customerID uint) ([]ticket.View, error) {
	if s == nil || s.tickets == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	key := fmt.Sprintf("my-tickets:%d", customerID)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if views, ok := v.([]ticket.View); ok {
				return views, nil
			}
		}
	}

	views, err := s.tickets.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []ticket.View{}
	}
	if s.cache != nil {
		s.cache.Set(key, views)
	}
	return views, nil
}

// Delete 删除客户。存在未删工单时拒绝（Conflict）：工单必须先显式处理，
// 不做级联删除。
func (s *Service) Delete(ctx context.Context, id uint) error {
	if s == nil || s.repo == nil || s.tickets == nil {
		return fmt.Errorf("service not initialized")
	}
	if _, err := s.repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.New(errs.KindNotFound, "Customer not found")
	} else if err != nil {
		return errs.Wrap(errs.KindInternal, "lookup customer", err)
	}

	count, err := s.tickets.CountByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errs.New(errs.KindConflict, "Customer has existing service tickets")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errs.Wrap(errs.KindInternal, "delete customer", err)
	}
	return nil
}
