package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// findCookie returns the named cookie from the response, or nil.
func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestUserId(t *testing.T) {
	tcases := []struct {
		name string
		ctx  context.Context
		want string
		ok   bool
	}{
		{
			name: "session present",
			ctx:  WithSession(context.Background(), Session{UserId: "user-1"}),
			want: "user-1",
			ok:   true,
		},
		{
			name: "empty user id",
			ctx:  WithSession(context.Background(), Session{}),
			ok:   false,
		},
		{
			name: "no session",
			ctx:  context.Background(),
			ok:   false,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := UserId(tc.ctx)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSessionFromToken(t *testing.T) {
	app := &App{signingKey: []byte("test-signing-key")}

	token, err := app.createJwtForSession(admin, time.Hour)
	assert.NoError(t, err)

	session, err := app.sessionFromToken(token)
	assert.NoError(t, err)
	assert.Equal(t, Session{UserId: admin.Id, Email: admin.Email, Role: types.RoleAdmin}, session)
	assert.True(t, session.IsAdmin())

	noRole, err := app.createJwtForSession(types.User{Id: "user-9"}, time.Hour)
	assert.NoError(t, err)
	session, err = app.sessionFromToken(noRole)
	assert.NoError(t, err)
	assert.Equal(t, types.RoleUser, session.Role, "expected role to default to user")

	noId, err := app.createJwtForSession(types.User{Email: "x@example.com"}, time.Hour)
	assert.NoError(t, err)
	_, err = app.sessionFromToken(noId)
	assert.Error(t, err, "expected token without user id to be rejected")
}

func TestRegister(t *testing.T) {
	created := database.User{
		Id:        "user-1",
		Name:      "Jane",
		Email:     "jane@example.com",
		Role:      types.RoleUser,
		CreatedAt: time.Now().UTC(),
	}

	tcases := []struct {
		name     string
		body     any
		mockUser database.User
		mockErr  error
		callsDb  bool
		status   int
		message  string
	}{
		{
			name:     "successfully registers a user",
			body:     RegisterRequest{Name: "Jane", Email: " Jane@Example.com ", Password: "secret"},
			mockUser: created,
			callsDb:  true,
			status:   http.StatusCreated,
		},
		{
			name:   "invalid json body",
			body:   "invalid json",
			status: http.StatusBadRequest,
		},
		{
			name:    "missing name",
			body:    RegisterRequest{Email: "jane@example.com", Password: "secret"},
			status:  http.StatusBadRequest,
			message: "name, email and password are required",
		},
		{
			name:    "missing password",
			body:    RegisterRequest{Name: "Jane", Email: "jane@example.com"},
			status:  http.StatusBadRequest,
			message: "name, email and password are required",
		},
		{
			name:    "invalid email",
			body:    RegisterRequest{Name: "Jane", Email: "not-an-email", Password: "secret"},
			status:  http.StatusBadRequest,
			message: "invalid email address",
		},
		{
			name:    "duplicate email",
			body:    RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret"},
			mockErr: fmt.Errorf("%w: users_email_key", database.ErrDuplicate),
			callsDb: true,
			status:  http.StatusBadRequest,
			message: "user already exists",
		},
		{
			name:    "database failure",
			body:    RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret"},
			mockErr: errors.New("connection refused"),
			callsDb: true,
			status:  http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			if tc.callsDb {
				db.On("CreateUser", mock.MatchedBy(func(p database.CreateUserParams) bool {
					return p.Email == "jane@example.com" &&
						p.Role == types.RoleUser &&
						verifyPassword(p.PasswordHash, "secret")
				})).Return(tc.mockUser, tc.mockErr).Once()
			}
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodPost, "/api/auth/register", tc.body, nil)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status != http.StatusCreated {
				if tc.message != "" {
					assert.Equal(t, tc.message, errorMessage(t, rr))
				}
				assert.Nil(t, findCookie(rr, tokenCookieKey), "expected no session cookie")
				return
			}

			resp := decodeBody[AuthResponse](t, rr)
			assert.Equal(t, created.Id, resp.User.Id)
			assert.Equal(t, created.Email, resp.User.Email)
			assert.NotEmpty(t, resp.Token)

			cookie := findCookie(rr, tokenCookieKey)
			if assert.NotNil(t, cookie, "expected session cookie") {
				assert.Equal(t, resp.Token, cookie.Value)
				assert.True(t, cookie.HttpOnly)
			}

			session, err := app.sessionFromToken(resp.Token)
			assert.NoError(t, err)
			assert.Equal(t, created.Id, session.UserId)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := hashPassword("secret")
	assert.NoError(t, err)

	stored := database.User{
		Id:           "owner-1",
		Name:         "Omar",
		Email:        "omar@example.com",
		PasswordHash: hash,
		Role:         types.RoleStoreOwner,
	}

	tcases := []struct {
		name     string
		body     any
		mockUser database.User
		mockErr  error
		callsDb  bool
		status   int
	}{
		{
			name:     "valid credentials",
			body:     LoginRequest{Email: "Omar@example.com", Password: "secret"},
			mockUser: stored,
			callsDb:  true,
			status:   http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     LoginRequest{Email: "omar@example.com", Password: "nope"},
			mockUser: stored,
			callsDb:  true,
			status:   http.StatusBadRequest,
		},
		{
			name:    "unknown user",
			body:    LoginRequest{Email: "omar@example.com", Password: "secret"},
			mockErr: database.ErrNotFound,
			callsDb: true,
			status:  http.StatusBadRequest,
		},
		{
			name:   "missing password",
			body:   LoginRequest{Email: "omar@example.com"},
			status: http.StatusBadRequest,
		},
		{
			name:    "database failure",
			body:    LoginRequest{Email: "omar@example.com", Password: "secret"},
			mockErr: errors.New("connection refused"),
			callsDb: true,
			status:  http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockRepository{}
			if tc.callsDb {
				db.On("GetUserByEmail", "omar@example.com").Return(tc.mockUser, tc.mockErr).Once()
			}
			app := newTestApp(t, db, nil)

			rr := do(t, app, http.MethodPost, "/api/auth/login", tc.body, nil)

			assert.Equal(t, tc.status, rr.Code)
			db.AssertExpectations(t)
			if tc.status == http.StatusBadRequest {
				assert.Equal(t, msgInvalidCredentials, errorMessage(t, rr))
			}
			if tc.status != http.StatusOK {
				return
			}

			resp := decodeBody[AuthResponse](t, rr)
			assert.Equal(t, types.RoleStoreOwner, resp.User.Role)
			session, err := app.sessionFromToken(resp.Token)
			assert.NoError(t, err)
			assert.Equal(t, Session{UserId: stored.Id, Email: stored.Email, Role: types.RoleStoreOwner}, session)
		})
	}
}

func TestMe(t *testing.T) {
	db := &database.MockRepository{}
	db.On("GetUserById", customer.Id).Return(database.User{
		Id:    customer.Id,
		Name:  customer.Name,
		Email: customer.Email,
		Role:  customer.Role,
	}, nil).Once()
	app := newTestApp(t, db, nil)

	rr := do(t, app, http.MethodGet, "/api/auth/me", nil, &customer)

	assert.Equal(t, http.StatusOK, rr.Code)
	user := decodeBody[types.User](t, rr)
	assert.Equal(t, customer.Id, user.Id)
	assert.Equal(t, customer.Name, user.Name)
	db.AssertExpectations(t)

	rr = do(t, app, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, &database.MockRepository{}, nil)

	rr := do(t, app, http.MethodGet, "/api/auth/logout", nil, nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	cookie := findCookie(rr, tokenCookieKey)
	if assert.NotNil(t, cookie) {
		assert.Empty(t, cookie.Value)
		assert.False(t, cookie.Expires.After(time.Now()), "expected cookie to be expired")
	}
}
