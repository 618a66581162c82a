package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clashwarriors/clash-warriors-sub000/internal/constants"
)

const testBotToken = "12345:test-bot-token"

// signInitData builds a Telegram-style init data string signed with the
// given bot token.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	pairs := make([]string, 0, len(fields))
	for k, v := range fields {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func validFields(now time.Time) map[string]string {
	return map[string]string{
		"auth_date": fmt.Sprintf("%d", now.Unix()),
		"query_id":  "AAF9tz0aAAAAAH23PRr_",
		"user":      `{"id":7799,"username":"ash","first_name":"Ash"}`,
	}
}

func TestValidateInitData(t *testing.T) {
	now := time.Now()
	raw := signInitData(t, testBotToken, validFields(now))

	user, err := ValidateInitData(raw, testBotToken, now)
	if err != nil {
		t.Fatalf("ValidateInitData: %v", err)
	}
	if user.ID != 7799 || user.Username != "ash" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestValidateInitDataRejects(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		raw  string
	}{
		{"wrong token", signInitData(t, "999:other-token", validFields(now))},
		{"missing hash", "auth_date=1&user=%7B%22id%22%3A1%7D"},
		{"tampered user", func() string {
			raw := signInitData(t, testBotToken, validFields(now))
			return strings.Replace(raw, "7799", "1234", 1)
		}()},
		{"stale auth date", signInitData(t, testBotToken, map[string]string{
			"auth_date": fmt.Sprintf("%d", now.Add(-48*time.Hour).Unix()),
			"user":      `{"id":7799,"username":"ash"}`,
		})},
		{"non-numeric auth date", signInitData(t, testBotToken, map[string]string{
			"auth_date": "yesterday",
			"user":      `{"id":7799,"username":"ash"}`,
		})},
		{"no user payload", signInitData(t, testBotToken, map[string]string{
			"auth_date": fmt.Sprintf("%d", now.Unix()),
		})},
		{"garbage", "%zz"},
	}
	for _, tc := range cases {
		if _, err := ValidateInitData(tc.raw, testBotToken, now); err == nil {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestAuthRequiredMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", AuthRequired(testBotToken), func(c *gin.Context) {
		id, name := sessionIdentity(c)
		c.JSON(http.StatusOK, gin.H{"telegram_id": id, "username": name})
	})

	// No header at all.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status %d", w.Code)
	}

	// Bad signature.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(constants.HeaderTelegramInitData, signInitData(t, "999:other", validFields(time.Now())))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature: status %d", w.Code)
	}

	// Valid init data passes identity through.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(constants.HeaderTelegramInitData, signInitData(t, testBotToken, validFields(time.Now())))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid init data: status %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "7799") || !strings.Contains(w.Body.String(), "ash") {
		t.Fatalf("identity not injected: %s", w.Body.String())
	}
}
