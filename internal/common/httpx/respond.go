package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/gin-gonic/gin"
)

// Error 把领域错误翻译成 HTTP 回复。底层存储错误一律折叠成
// 500 "internal error"，不向客户端透出。
func Error(c *gin.Context, err error) {
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind == errs.KindInternal || e.Kind == errs.KindUnknown {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	status := errs.HTTPStatus(err)
	if e.Kind == errs.KindValidation && len(e.Fields) > 0 {
		c.JSON(status, gin.H{"errors": e.Fields})
		return
	}
	c.JSON(status, gin.H{"message": e.Message})
}

// ParseID 解析路径里的数字 ID；非法时按资源不存在处理（404）。
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "resource not found"})
		return 0, false
	}
	return uint(id), true
}
