package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"foamworks/internal/common"
	"foamworks/internal/middleware"
	"foamworks/internal/repositories"
)

// LegacyHandlers adapts the action-based request format older clients still
// send to the path-based API. Each action maps onto one regular handler; the
// legacy payload becomes that handler's request body.
type LegacyHandlers struct {
	auth      *AuthHandlers
	sync      *SyncHandlers
	jobs      *JobHandlers
	files     *FileHandlers
	usersRepo repositories.UsersRepository
	jwtSecret []byte
}

func NewLegacyHandlers(auth *AuthHandlers, sync *SyncHandlers, jobs *JobHandlers, files *FileHandlers, usersRepo repositories.UsersRepository, jwtSecret string) *LegacyHandlers {
	return &LegacyHandlers{
		auth:      auth,
		sync:      sync,
		jobs:      jobs,
		files:     files,
		usersRepo: usersRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

type legacyRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func (h *LegacyHandlers) Dispatch(c echo.Context) error {
	var req legacyRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	if req.Action == "" {
		return common.Fail(c, common.Invalidf("no action provided"))
	}

	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	var handler echo.HandlerFunc
	needsAuth := true
	switch req.Action {
	case "LOGIN":
		handler, needsAuth = h.auth.Login, false
	case "SIGNUP":
		handler, needsAuth = h.auth.Signup, false
	case "CREW_LOGIN":
		handler, needsAuth = h.auth.CrewLogin, false
	case "SYNC_DOWN":
		handler = h.sync.Down
	case "SYNC_UP":
		handler = h.sync.Up
	case "START_JOB":
		handler = h.jobs.Start
	case "COMPLETE_JOB":
		handler = h.jobs.Complete
	case "MARK_JOB_PAID":
		handler = h.jobs.MarkPaid
	case "DELETE_ESTIMATE":
		handler = h.jobs.Delete
	case "UPLOAD_IMAGE":
		handler = h.files.UploadImage
	case "SAVE_PDF":
		handler = h.files.SavePDF
	default:
		return common.Fail(c, common.Invalidf("unknown action: %s", req.Action))
	}

	ctx := c.Request().Context()
	if needsAuth {
		var err error
		ctx, err = h.authenticate(c, payload)
		if err != nil {
			return common.Fail(c, err)
		}
	}

	r := c.Request().WithContext(ctx)
	r.Body = io.NopCloser(bytes.NewReader(payload))
	r.ContentLength = int64(len(payload))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.SetRequest(r)

	return handler(c)
}

// authenticate verifies the legacy token, which may ride inside the payload
// instead of the Authorization header, and resolves the tenant the same way
// the middleware does on the path-based routes.
func (h *LegacyHandlers) authenticate(c echo.Context, payload json.RawMessage) (context.Context, error) {
	var carrier struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(payload, &carrier)

	tokenString := carrier.Token
	if tokenString == "" {
		tokenString = strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	}
	if tokenString == "" {
		return nil, common.Unauthorizedf("missing token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &middleware.Claims{}, func(t *jwt.Token) (any, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.Unauthorizedf("invalid token")
	}
	claims, ok := token.Claims.(*middleware.Claims)
	if !ok || claims.Username == "" {
		return nil, common.Unauthorizedf("invalid token")
	}

	user, err := h.usersRepo.GetByUsername(c.Request().Context(), claims.Username)
	if err != nil {
		return nil, common.Unauthorizedf("user not found")
	}

	ctx := context.WithValue(c.Request().Context(), common.UsernameKey, user.Username)
	ctx = context.WithValue(ctx, common.TenantKey, user.CompanyName)
	ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
	return ctx, nil
}
