package auth

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "hotelms/internal/errors"
	"hotelms/internal/logger"
	"hotelms/internal/model"
)

// ContextKey is the echo context key holding *Claims for authenticated requests.
const ContextKey = "claims"

var errTokenRevoked = errors.New("token has been revoked")

// JWTMiddleware authenticates bearer access tokens and rejects revoked ones.
func JWTMiddleware(jwtService *JWTService, store TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			if claims.TokenType != TokenTypeAccess {
				return nil, errors.New("not an access token")
			}
			revoked, err := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil || revoked {
				return nil, errTokenRevoked
			}
			return claims, nil
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := ClaimsFromContext(c); ok {
				ctx := context.WithValue(c.Request().Context(), logger.UserIDKey, claims.UserID.String())
				c.SetRequest(c.Request().WithContext(ctx))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			message := "invalid or missing access token"
			if errors.Is(err, errTokenRevoked) {
				message = errTokenRevoked.Error()
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: message,
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// ClaimsFromContext returns the claims stored by JWTMiddleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok
}

// RequireRole allows the request only when the caller has one of the roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHORIZED",
				})
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Error: "insufficient permissions",
				Code:  "FORBIDDEN",
			})
		}
	}
}
