package client

import (
	"fmt"

	"doctor-registry/internal/domain"

	"github.com/golang-jwt/jwt/v4"
)

// ActorFromToken 从 token 的 claims 中读取用户名和角色
//
// 签名由后端校验，这里只解码，不验证。
func ActorFromToken(token string) (domain.Actor, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Actor{}, fmt.Errorf("failed to decode token: %w", err)
	}

	actor := domain.Actor{}
	if s, ok := claims["username"].(string); ok && s != "" {
		actor.Username = s
	} else if s, ok := claims["sub"].(string); ok {
		actor.Username = s
	}
	if s, ok := claims["role"].(string); ok {
		actor.Role = s
	}
	if actor.Username == "" {
		return domain.Actor{}, fmt.Errorf("token has no subject")
	}
	return actor, nil
}
