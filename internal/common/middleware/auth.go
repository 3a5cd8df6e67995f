package middleware

import (
	"net/http"
	"strings"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// CustomerHandler 客户路由处理函数：主体 ID 作为显式参数传入，不走请求级全局状态。
type CustomerHandler func(c *gin.Context, customerID uint)

// MechanicHandler 技师路由处理函数。
type MechanicHandler func(c *gin.Context, mechanicID uint)

// bearerToken 提取 Authorization: Bearer <token>；缺失或前缀不对返回空串。
func bearerToken(c *gin.Context) string {
	raw := c.GetHeader("Authorization")
	if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

// RequireCustomer 包装需要客户身份的处理函数。
// 要求 token 主体存在且不带 role 声明：技师 token 不能访问客户路由。
func RequireCustomer(ts *auth.TokenService, log logger.Logger, h CustomerHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is missing or invalid"})
			return
		}

		sub, err := ts.Verify(raw)
		if err != nil {
			rejectToken(c, log, err)
			return
		}
		if sub.Role != "" {
			rejectToken(c, log, errs.New(errs.KindAuthInvalid, "role not allowed on customer route"))
			return
		}

		h(c, sub.ID)
	}
}

// RequireMechanic 包装需要技师身份的处理函数。
// 要求 role=mechanic 且主体存在；客户 token 不能访问技师路由。
func RequireMechanic(ts *auth.TokenService, log logger.Logger, h MechanicHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is missing or invalid"})
			return
		}

		sub, err := ts.Verify(raw)
		if err != nil {
			rejectToken(c, log, err)
			return
		}
		if sub.Role != auth.RoleMechanic {
			rejectToken(c, log, errs.New(errs.KindAuthInvalid, "mechanic role required"))
			return
		}

		h(c, sub.ID)
	}
}

// rejectToken 统一 401 回复。具体失败原因只记日志，不透给客户端。
func rejectToken(c *gin.Context, log logger.Logger, err error) {
	if log != nil {
		log.WithFields(map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Warn("token validation failed")
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token validation failed"})
}
