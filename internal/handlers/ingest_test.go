package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fttn/logproxy/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ingestRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.POST("/log", NewIngestHandler(db).Log)
	return router
}

func postLog(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/log", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestIngestLog_Success(t *testing.T) {
	db := newTestDB(t)
	router := ingestRouter(db)

	w := postLog(router, `{"function":"sendSms","data":{"to":"+4791234567"}}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("body %s missing ok status", body)
	}
	if !strings.Contains(body, `"log_id"`) {
		t.Errorf("body %s missing log_id", body)
	}

	var record models.CallLog
	if err := db.First(&record).Error; err != nil {
		t.Fatalf("no record stored: %v", err)
	}
	if record.FunctionName != "sendSms" {
		t.Errorf("FunctionName = %q, expected %q", record.FunctionName, "sendSms")
	}
	if record.Data != `{"to":"+4791234567"}` {
		t.Errorf("Data = %q, expected compact payload", record.Data)
	}
	if record.HTTPMethod != "POST" {
		t.Errorf("HTTPMethod = %q, expected %q", record.HTTPMethod, "POST")
	}
}

func TestIngestLog_BadRequests(t *testing.T) {
	db := newTestDB(t)
	router := ingestRouter(db)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"missing function", `{"data":{"a":1}}`},
		{"empty function", `{"function":"","data":{"a":1}}`},
		{"missing data", `{"function":"sendSms"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postLog(router, tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected %d, body = %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
		})
	}

	var count int64
	db.Model(&models.CallLog{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected requests must not be stored, found %d rows", count)
	}
}

func TestIngestLog_HeadersCapturedWithoutCredential(t *testing.T) {
	db := newTestDB(t)
	router := ingestRouter(db)

	w := postLog(router, `{"function":"ping","data":{}}`, map[string]string{
		"Authorization": "Bearer super-secret-token",
		"User-Agent":    "curl/8.0",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var record models.CallLog
	db.First(&record)

	if strings.Contains(record.Headers, "super-secret-token") {
		t.Error("stored headers must not contain the bearer credential")
	}
	if !strings.Contains(record.Headers, "curl/8.0") {
		t.Errorf("stored headers %q should contain the user agent", record.Headers)
	}
}
