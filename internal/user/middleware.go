package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/token"
)

const (
	CookieName          = "user-id"
	SignatureCookieName = "user-sig"
	CookieMaxAge        = 365 * 24 * 60 * 60
	UserIDKey           = "userID"
)

// EnsureUserCookieMiddleware 确保用户的浏览器中有一对格式正确、签名有效的身份cookie。
// 如果没有或验证失败，它会生成一个新的临时ID并重新签发。
func EnsureUserCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := c.Cookie(CookieName)
		signature, sigErr := c.Cookie(SignatureCookieName)

		valid := err == nil && sigErr == nil && IsValidUUID(userID) && token.VerifyUserID(userID, signature)
		if !valid {
			if err != nil && err != http.ErrNoCookie {
				fmt.Printf("检测到无效的用户Cookie: %s, err: %v\n", userID, err)
			}
			provisionalID, genErr := CreateProvisionalUser()
			if genErr != nil {
				fmt.Printf("创建临时用户ID时发生错误: %v\n", genErr)
			} else {
				c.SetCookie(CookieName, provisionalID, CookieMaxAge, "/", "", false, true)
				c.SetCookie(SignatureCookieName, token.SignUserID(provisionalID), CookieMaxAge, "/", "", false, true)
			}
		}

		c.Next()
	}
}

// LoadUserMiddleware 读取并验证身份cookie，把通过验证的用户ID放入Gin上下文。
// 验证失败时上下文中的ID为空字符串，由各handler决定是否拒绝请求。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Cookie(CookieName)
		signature, _ := c.Cookie(SignatureCookieName)

		if !IsValidUUID(userID) || !token.VerifyUserID(userID, signature) {
			userID = ""
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}
