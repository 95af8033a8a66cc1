package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fttn/logproxy/internal/services"
	"github.com/fttn/logproxy/pkg/logger"
	"github.com/fttn/logproxy/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type IngestHandler struct {
	ingestService *services.IngestService
}

func NewIngestHandler(db *gorm.DB) *IngestHandler {
	return &IngestHandler{
		ingestService: services.NewIngestService(db),
	}
}

type ingestRequest struct {
	Function string          `json:"function"`
	Data     json.RawMessage `json:"data"`
}

// Log records one function-call event.
// POST /log — requires a valid bearer token (enforced by middleware).
func (h *IngestHandler) Log(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid JSON body")
		return
	}

	headersJSON := snapshotHeaders(c)

	id, err := h.ingestService.Ingest(
		req.Function,
		req.Data,
		c.ClientIP(),
		c.Request.Method,
		headersJSON,
	)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(c, validationErr.Error())
			return
		}

		// Full detail goes to the operational log only; the caller gets
		// a generic failure.
		logger.Error().
			Err(err).
			Str("function", req.Function).
			Str("ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("failed to persist call log")
		response.ServerError(c, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "logged successfully",
		"log_id":  id,
	})
}

// snapshotHeaders serializes the request headers, excluding the bearer
// credential, into the JSON form persisted alongside the record. Header
// keys are already in canonical hyphenated form.
func snapshotHeaders(c *gin.Context) string {
	headers := make(map[string]string, len(c.Request.Header))
	for key, values := range c.Request.Header {
		if strings.EqualFold(key, "Authorization") {
			continue
		}
		headers[key] = strings.Join(values, ", ")
	}

	encoded, err := services.MarshalUnescaped(headers)
	if err != nil {
		return "{}"
	}
	return encoded
}
