package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iurnickita/seafoodpos/internal/logger/config"
)

func TestNewZapLog(t *testing.T) {
	zl, err := NewZapLog(config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, zl)

	_, err = NewZapLog(config.Config{LogLevel: "loud"})
	require.Error(t, err)
}

func TestRequestLogMdlw(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	zaplog := zap.New(core)

	var gotBody string
	h := RequestLogMdlw(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}, zaplog)

	r := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{"amount":"25"}`))
	w := httptest.NewRecorder()
	h(w, r)

	// тело доступно хендлеру после логирования
	require.Equal(t, `{"amount":"25"}`, gotBody)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, w.Header().Get(HeaderRequestID))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "got incoming HTTP request", entries[0].Message)
	require.Equal(t, "send HTTP response", entries[1].Message)
	require.Equal(t, "201", entries[1].ContextMap()["code"])
	require.Equal(t, "2", entries[1].ContextMap()["length"])
}
