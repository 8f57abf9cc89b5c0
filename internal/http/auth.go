package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/service"
)

const (
	sessionCookie = "session"

	loginPath     = "/login"
	dashboardPath = "/dashboard"
	invoicesPath  = "/dashboard/invoices"
)

const userKey = "user"

type loginRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

type signupRequest struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	Secret   string `form:"secret" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors":  bindingFieldErrors(err),
			"message": "Invalid login fields.",
		})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var storageErr *service.StorageError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			// same message whether the email or the password was wrong
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		case errors.As(err, &storageErr):
			h.logger.WithError(storageErr.Unwrap()).Error("authenticate user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": storageErr.Error()})
		default:
			h.logger.WithError(err).Error("authenticate user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
		}
		return
	}

	token, err := h.issueSession(user)
	if err != nil {
		h.logger.WithError(err).Error("issue session")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
		return
	}

	c.SetCookie(sessionCookie, token, int(h.tokenTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, loginPath)
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors":  bindingFieldErrors(err),
			"message": "Invalid signup fields.",
		})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists."})
		case errors.Is(err, service.ErrInvalidRegistrationSecret):
			c.JSON(http.StatusForbidden, gin.H{"message": "Invalid registration secret."})
		default:
			h.logger.WithError(err).Error("register user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

// loginPage exists so the route guard has something to protect; the
// rendering layer draws the actual form.
func (h *Handler) loginPage(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) issueSession(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

func (h *Handler) sessionSubject(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// requireSession guards everything under the dashboard prefix: without
// a valid session the request is redirected to the login path before
// any handler runs.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := h.sessionSubject(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), subject)
		if err != nil {
			c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// redirectAuthed bounces already signed-in users off the login page.
func (h *Handler) redirectAuthed() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.sessionSubject(c); ok {
			c.Redirect(http.StatusSeeOther, dashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bindingFieldErrors(err error) map[string][]string {
	out := make(map[string][]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = []string{"Malformed form submission."}
		return out
	}

	for _, fe := range verrs {
		field := fieldFormName(fe.Field())
		out[field] = append(out[field], fieldMessage(field, fe.Tag()))
	}
	return out
}

func fieldFormName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Name":
		return "name"
	case "Secret":
		return "secret"
	}
	return structField
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return "Password must be at least 6 characters."
	}
	return "Invalid " + field + "."
}
