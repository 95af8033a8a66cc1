package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/services"
	"github.com/fttn/logproxy/pkg/logger"
	"github.com/fttn/logproxy/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// previewLength is how many characters of the data payload the list view
// carries; the detail endpoint returns the full record.
const previewLength = 200

type LogsHandler struct {
	queryService *services.LogQueryService
}

func NewLogsHandler(db *gorm.DB, pageSize int) *LogsHandler {
	return &LogsHandler{
		queryService: services.NewLogQueryService(db, pageSize),
	}
}

type logListItem struct {
	ID           uint      `json:"id"`
	FunctionName string    `json:"function_name"`
	DataPreview  string    `json:"data_preview"`
	IPAddress    string    `json:"ip_address"`
	HTTPMethod   string    `json:"http_method"`
	CreatedAt    time.Time `json:"created_at"`
}

// List returns one page of filtered call logs, newest first.
// GET /api/logs
func (h *LogsHandler) List(c *gin.Context) {
	var filters services.LogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.queryService.QueryLogs(filters, page)
	if err != nil {
		logger.Error().Err(err).Msg("log list query failed")
		response.Error(c, err)
		return
	}

	items := make([]logListItem, 0, len(result.Records))
	for _, r := range result.Records {
		items = append(items, logListItem{
			ID:           r.ID,
			FunctionName: r.FunctionName,
			DataPreview:  truncate(r.Data, previewLength),
			IPAddress:    r.IPAddress,
			HTTPMethod:   r.HTTPMethod,
			CreatedAt:    r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"records": items,
		"total":   result.Total,
		"pages":   result.Pages,
		"page":    result.Page,
	})
}

// Detail returns the full record for one log entry.
// GET /api/logs/:id
func (h *LogsHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid log id")
		return
	}

	record, err := h.queryService.GetLogDetail(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c, "log not found")
			return
		}
		logger.Error().Err(err).Uint64("id", id).Msg("log detail query failed")
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Stats returns per-function call counts.
// GET /api/logs/stats
func (h *LogsHandler) Stats(c *gin.Context) {
	stats, err := h.queryService.FunctionStats()
	if err != nil {
		logger.Error().Err(err).Msg("function stats query failed")
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Functions returns the distinct function names for the filter dropdown.
// GET /api/logs/functions
func (h *LogsHandler) Functions(c *gin.Context) {
	names, err := h.queryService.DistinctFunctions()
	if err != nil {
		logger.Error().Err(err).Msg("distinct functions query failed")
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"functions": names})
}

// IPs returns the distinct client IPs for the filter dropdown.
// GET /api/logs/ips
func (h *LogsHandler) IPs(c *gin.Context) {
	ips, err := h.queryService.DistinctIPs()
	if err != nil {
		logger.Error().Err(err).Msg("distinct ips query failed")
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ips": ips})
}

// Export streams the filtered logs as CSV. The output starts with a
// UTF-8 byte-order mark so spreadsheet tools pick up the encoding.
// GET /api/logs/export
func (h *LogsHandler) Export(c *gin.Context) {
	var filters services.LogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filename := fmt.Sprintf("api_logs_%s.csv", time.Now().Format("2006-01-02_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Writer.WriteHeader(http.StatusOK)

	if _, err := c.Writer.WriteString("\xEF\xBB\xBF"); err != nil {
		return
	}

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"ID", "Function", "Data", "IP", "Method", "Timestamp"}); err != nil {
		return
	}

	err := h.queryService.ForEachLog(filters, func(record models.CallLog) error {
		return w.Write([]string{
			strconv.FormatUint(uint64(record.ID), 10),
			record.FunctionName,
			record.Data,
			record.IPAddress,
			record.HTTPMethod,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	})
	if err != nil {
		// Headers are already sent; all we can do is log and stop.
		logger.Error().Err(err).Msg("csv export aborted")
		return
	}

	w.Flush()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
