package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// secretKey 是一个全局变量，用于存储服务器在启动时生成的32字节密钥。
var secretKey []byte

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// SignUserID 为一个用户ID生成HMAC-SHA256签名，返回Base64编码字符串。
// 签名和用户ID一起写入cookie，用于识别被篡改的身份。
func SignUserID(userID string) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(userID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyUserID 验证用户ID和签名是否匹配。
func VerifyUserID(userID, signatureB64 string) bool {
	actualSignature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false // 签名解码失败
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(userID))
	expectedSignature := mac.Sum(nil)

	// 使用 hmac.Equal 进行安全的、时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
