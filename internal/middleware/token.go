package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var errInvalidToken = errors.New("invalid token")

// AuthJWT が読める形でHS256トークンを作る（開発用CLIとテストで使う）
func IssueToken(secret string, userID int64, role model.Role, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// "Bearer xxx" から xxx を取り出す
func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// 署名・期限を検証して (user_id, role) を返す。
// sub は文字列でも数値でもよい。role は Customer / Admin のみ。
func parseAccessToken(secret, raw string) (int64, model.Role, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", errInvalidToken
	}

	var userID int64
	switch sub := claims["sub"].(type) {
	case string:
		userID, err = strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return 0, "", errInvalidToken
		}
	case float64:
		userID = int64(sub)
	default:
		return 0, "", errInvalidToken
	}
	if userID <= 0 {
		return 0, "", errInvalidToken
	}

	role, _ := claims["role"].(string)
	switch model.Role(role) {
	case model.RoleCustomer, model.RoleAdmin:
		return userID, model.Role(role), nil
	default:
		return 0, "", errInvalidToken
	}
}
