package services

import (
	"errors"
	"time"

	"github.com/fttn/logproxy/internal/models"
	"gorm.io/gorm"
)

// LogQueryService builds filtered, paginated and aggregated views over
// stored call-log records. All reads; never mutates.
type LogQueryService struct {
	db       *gorm.DB
	pageSize int
}

func NewLogQueryService(db *gorm.DB, pageSize int) *LogQueryService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &LogQueryService{db: db, pageSize: pageSize}
}

// LogFilters are optional constraints, ANDed when present. Dates use the
// YYYY-MM-DD form and are widened to whole days. Search is an unanchored
// substring match on the data column; case sensitivity follows the store
// collation. Fine at current volume, a full-text index would be needed if
// the table grows by orders of magnitude.
type LogFilters struct {
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
	FunctionName string `form:"function_name"`
	Search       string `form:"search"`
	IPAddress    string `form:"ip_address"`
}

// LogPage is one page of filtered results.
type LogPage struct {
	Records []models.CallLog `json:"records"`
	Total   int64            `json:"total"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
}

// FunctionStat aggregates call counts per function name.
type FunctionStat struct {
	FunctionName string    `json:"function_name"`
	TotalCalls   int64     `json:"total_calls"`
	LastCall     time.Time `json:"last_call"`
}

// filtered returns a query over api_logs with the filter predicate
// applied. Both the count and the row queries build on it so the
// pagination math always matches the result set.
func (s *LogQueryService) filtered(filters LogFilters) *gorm.DB {
	query := s.db.Model(&models.CallLog{})

	if filters.DateFrom != "" {
		if from, err := time.ParseInLocation("2006-01-02", filters.DateFrom, time.Local); err == nil {
			query = query.Where("created_at >= ?", from)
		}
	}
	if filters.DateTo != "" {
		if to, err := time.ParseInLocation("2006-01-02", filters.DateTo, time.Local); err == nil {
			query = query.Where("created_at <= ?", to.Add(24*time.Hour-time.Second))
		}
	}
	if filters.FunctionName != "" {
		query = query.Where("function_name = ?", filters.FunctionName)
	}
	if filters.Search != "" {
		query = query.Where("data LIKE ?", "%"+filters.Search+"%")
	}
	if filters.IPAddress != "" {
		query = query.Where("ip_address = ?", filters.IPAddress)
	}

	return query
}

// QueryLogs returns one page of records matching the filters, newest
// first. The requested page is clamped to the valid range; ties on
// created_at are broken by id so pagination stays deterministic.
func (s *LogQueryService) QueryLogs(filters LogFilters, page int) (*LogPage, error) {
	var total int64
	if err := s.filtered(filters).Count(&total).Error; err != nil {
		return nil, &StorageError{Op: "count logs", Err: err}
	}

	pages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	offset := (page - 1) * s.pageSize

	var records []models.CallLog
	if err := s.filtered(filters).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(s.pageSize).
		Find(&records).Error; err != nil {
		return nil, &StorageError{Op: "query logs", Err: err}
	}

	return &LogPage{
		Records: records,
		Total:   total,
		Pages:   pages,
		Page:    page,
	}, nil
}

// GetLogDetail returns the full record for id, or ErrNotFound.
func (s *LogQueryService) GetLogDetail(id uint) (*models.CallLog, error) {
	var record models.CallLog
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "get log detail", Err: err}
	}
	return &record, nil
}

// FunctionStats returns per-function call counts with the most recent
// call time, ordered by call count descending.
func (s *LogQueryService) FunctionStats() ([]FunctionStat, error) {
	var stats []FunctionStat
	if err := s.db.Model(&models.CallLog{}).
		Select("function_name, COUNT(*) as total_calls, MAX(created_at) as last_call").
		Group("function_name").
		Order("total_calls DESC").
		Scan(&stats).Error; err != nil {
		return nil, &StorageError{Op: "function stats", Err: err}
	}
	return stats, nil
}

// DistinctFunctions returns the sorted distinct function names, for
// populating the filter dropdown.
func (s *LogQueryService) DistinctFunctions() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.CallLog{}).
		Distinct("function_name").
		Order("function_name").
		Pluck("function_name", &names).Error; err != nil {
		return nil, &StorageError{Op: "distinct functions", Err: err}
	}
	return names, nil
}

// DistinctIPs returns the sorted distinct client IPs, empty values
// excluded.
func (s *LogQueryService) DistinctIPs() ([]string, error) {
	var ips []string
	if err := s.db.Model(&models.CallLog{}).
		Where("ip_address <> ''").
		Distinct("ip_address").
		Order("ip_address").
		Pluck("ip_address", &ips).Error; err != nil {
		return nil, &StorageError{Op: "distinct ips", Err: err}
	}
	return ips, nil
}

// ForEachLog streams every record matching the filters, in the same
// order as QueryLogs, calling fn once per record. Rows are scanned one at
// a time so an export never buffers the full result set.
func (s *LogQueryService) ForEachLog(filters LogFilters, fn func(models.CallLog) error) error {
	rows, err := s.filtered(filters).
		Order("created_at DESC, id DESC").
		Rows()
	if err != nil {
		return &StorageError{Op: "export logs", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var record models.CallLog
		if err := s.db.ScanRows(rows, &record); err != nil {
			return &StorageError{Op: "export logs", Err: err}
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &StorageError{Op: "export logs", Err: err}
	}
	return nil
}
