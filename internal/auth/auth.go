package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iurnickita/seafoodpos/internal/session"
	"github.com/iurnickita/seafoodpos/internal/store"
	"github.com/iurnickita/seafoodpos/internal/token"
)

type Auth interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

const cookieUserToken = "seafoodposUserToken"

var ErrInvalidLogin = errors.New("invalid login")

type ctxKey struct{}

// User - пользователь запроса, кладется в контекст middleware
type User struct {
	ID       int64
	Username string
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(ctxKey{}).(User)
	return user, ok
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

type auth struct {
	store    store.Store
	sessions *session.Store
	secret   string
	secure   bool
	zaplog   *zap.Logger
}

func NewAuth(store store.Store, sessions *session.Store, secret string, secure bool, zaplog *zap.Logger) Auth {
	return &auth{
		store:    store,
		sessions: sessions,
		secret:   secret,
		secure:   secure,
		zaplog:   zaplog,
	}
}

type LoginJSONRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *auth) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, ErrInvalidLogin.Error(), http.StatusBadRequest)
		return
	}

	user, err := a.store.AuthGetUser(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			http.Error(w, ErrInvalidLogin.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// пустой хеш (пароль не задан) тоже не проходит
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.zaplog.Info("login failed", zap.String("username", req.Username))
		http.Error(w, ErrInvalidLogin.Error(), http.StatusUnauthorized)
		return
	}

	tokenString, err := token.BuildJWTString(a.secret, user.ID, user.Username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieUserToken,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(token.TokenExp.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusOK)
}

func (a *auth) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieUserToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
	})
	a.sessions.Clear(w)
	w.WriteHeader(http.StatusOK)
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// получение пользователя из токена
		user, err := a.getUser(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// передаём управление хендлеру
		h.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

func (a *auth) getUser(r *http.Request) (User, error) {
	tokenCookie, err := r.Cookie(cookieUserToken)
	if err != nil {
		return User{}, err
	}
	claims, err := token.GetClaims(a.secret, tokenCookie.Value)
	if err != nil {
		return User{}, err
	}
	return User{ID: claims.UserID, Username: claims.Username}, nil
}
