package middleware // middleware contains reusable HTTP middleware functions

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/task-manager-api/internal/repository"
    "github.com/iliyamo/task-manager-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and resolves its subject (the user's email) to a live account.  On
// success the user's id and email are injected into the request context
// under "user_id" and "user_email" so handlers can scope their queries.
//
// An expired token is reported separately from a forged one so clients
// know when a refresh is worth attempting.  A token whose subject no
// longer resolves to an active user yields a plain "unauthorized".
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            email, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                if errors.Is(err, utils.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByEmail(ctx, email)
            if err != nil {
                if errors.Is(err, sql.ErrNoRows) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
            }
            if !u.IsActive {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
            }

            c.Set("user_id", u.ID)
            c.Set("user_email", u.Email)
            return next(c)
        }
    }
}
