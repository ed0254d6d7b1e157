package webhook

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(t *testing.T, seen *string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hook", RequireSignature("secret", 5*time.Minute), func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		*seen = string(b)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireSignatureAcceptsSignedBody(t *testing.T) {
	var seen string
	r := newRouter(t, &seen)

	body := "MessageSid=SM1&MessageStatus=sent"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderSignature, Sign("secret", ts, []byte(body)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if seen != body {
		t.Fatalf("expected body restored for handler, got %q", seen)
	}
}

func TestRequireSignatureRejectsUnsigned(t *testing.T) {
	var seen string
	r := newRouter(t, &seen)

	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("x=1"))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(time.Now().Unix(), 10))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if seen != "" {
		t.Fatalf("handler must not run on rejection")
	}
	if strings.Contains(w.Body.String(), "x=1") {
		t.Fatalf("payload must not be echoed")
	}
}
