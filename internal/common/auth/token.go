package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MechanicWorks/MechanicWorks/internal/common/config"
	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/golang-jwt/jwt/v5"
)

// RoleMechanic 技师 token 的 role 声明；客户 token 不带 role。
const RoleMechanic = "mechanic"

// Claims HS256 JWT 载荷。
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Subject 校验通过后解出的主体。
type Subject struct {
	ID   uint   // 客户或技师 ID
	Role string // 空 = 客户，"mechanic" = 技师
}

// TokenService 签发/校验会话 token。密钥在构造时注入（配置/环境来源），
// 进程内单密钥，无轮换。
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService 创建 TokenService。
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is empty")
	}
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    ttl,
	}, nil
}

// IssueCustomerToken 签发客户 token（无 role 声明）。
func (s *TokenService) IssueCustomerToken(customerID uint) (string, time.Time, error) {
	return s.issue(customerID, "")
}

// IssueMechanicToken 签发技师 token（role=mechanic）。
func (s *TokenService) IssueMechanicToken(mechanicID uint) (string, time.Time, error) {
	return s.issue(mechanicID, RoleMechanic)
}

func (s *TokenService) issue(subjectID uint, role string) (string, time.Time, error) {
	if subjectID == 0 {
		return "", time.Time{}, fmt.Errorf("subject id is zero")
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify 校验签名与有效期，返回主体。失败分类：
// - 过期 -> KindAuthExpired
// - 签名错误/载荷不合法 -> KindAuthInvalid
// 细节原因只进日志，不回传客户端。
func (s *TokenService) Verify(raw string) (Subject, error) {
	if raw == "" {
		return Subject{}, errs.New(errs.KindAuthMissing, "token is missing")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Subject{}, errs.Wrap(errs.KindAuthExpired, "token expired", err)
		}
		return Subject{}, errs.Wrap(errs.KindAuthInvalid, "token invalid", err)
	}
	if parsed == nil || !parsed.Valid {
		return Subject{}, errs.New(errs.KindAuthInvalid, "token invalid")
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return Subject{}, errs.New(errs.KindAuthInvalid, "token invalid")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Subject{}, errs.New(errs.KindAuthInvalid, "token invalid")
	}

	return Subject{ID: uint(id), Role: claims.Role}, nil
}
