package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCrawl_RejectsMissingURL(t *testing.T) {
	r := gin.New()
	r.POST("/crawl", Crawl(nil))

	req := httptest.NewRequest(http.MethodPost, "/crawl", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", w.Code)
	}
}
