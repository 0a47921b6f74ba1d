package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// UserID pulls the numeric subject out of the verified token claims.
func UserID(c echo.Context) (int64, bool) {
	claims, ok := claims(c)
	if !ok {
		return 0, false
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, false
	}
	return int64(sub), true
}

// Role returns the role claim, "" when absent.
func Role(c echo.Context) string {
	claims, ok := claims(c)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

func claims(c echo.Context) (jwt.MapClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	return mc, ok
}
