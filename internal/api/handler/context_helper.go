package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oomaryaser/QREventScanner/pkg/response"
)

// MustGetOwnerCode 从 Gin 上下文中安全提取 owner_code。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOwnerCode(c *gin.Context) (string, bool) {
	v, exists := c.Get("owner_code")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetTokenID 提取当前 Access Token 的 JTI，登出拉黑时使用
func GetTokenID(c *gin.Context) string {
	return c.GetString("token_id")
}

// GetTokenExpiresAt 提取当前 Access Token 的过期时间
func GetTokenExpiresAt(c *gin.Context) time.Time {
	if v, exists := c.Get("token_expires_at"); exists {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
