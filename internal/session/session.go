// Package session хранит корзину и активного клиента в подписанной cookie.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/token"
)

const CookieName = "seafoodposSession"

// MaxCookieSize - предел имени и значения cookie; больше браузер молча отбросит
const MaxCookieSize = 4000

var ErrSessionTooLarge = errors.New("session is too large")

type claims struct {
	jwt.RegisteredClaims
	UserID  int64         `json:"uid"`
	Session model.Session `json:"session"`
}

type Store struct {
	secret []byte
	secure bool
}

func NewStore(secret string, secure bool) *Store {
	return &Store{secret: []byte(secret), secure: secure}
}

// Load читает сессию пользователя userID. Нет cookie, подпись неверна
// или сессия чужая - пустая сессия.
func (s *Store) Load(r *http.Request, userID int64) model.Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return model.Session{}
	}

	c := claims{}
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || c.UserID != userID {
		return model.Session{}
	}
	return c.Session
}

// Save пишет сессию в cookie. Если она не влезает в cookie,
// возвращает ErrSessionTooLarge и прежняя cookie остается.
func (s *Store) Save(w http.ResponseWriter, userID int64, sess model.Session) error {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(token.TokenExp)),
		},
		UserID:  userID,
		Session: sess,
	})
	value, err := t.SignedString(s.secret)
	if err != nil {
		return err
	}
	if len(CookieName)+1+len(value) > MaxCookieSize {
		return ErrSessionTooLarge
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(token.TokenExp.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
	})
}
