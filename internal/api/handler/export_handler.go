package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimetable 导出全校课表
// GET /api/v1/export/timetable
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportTimetable(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	download(c, buf, filename, contentTypeXLSX)
}

// ExportTeacherCalendar 导出教师课表为 iCalendar
// GET /api/v1/export/teachers/:id/calendar?from=2026-09-06
func (h *ExportHandler) ExportTeacherCalendar(c *gin.Context) {
	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, 10001, "from 格式应为 YYYY-MM-DD")
			return
		}
		from = t
	}

	buf, filename, err := h.exportSvc.ExportTeacherCalendar(c.Request.Context(), c.Param("id"), from)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	download(c, buf, filename, contentTypeICS)
}

// download 设置下载响应头并写出文件
func download(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 12001, "教师不存在")
	case errors.Is(err, service.ErrExportNoPeriods):
		response.BadRequest(c, 17001, "尚未配置节次")
	case errors.Is(err, service.ErrExportNoSections):
		response.BadRequest(c, 17002, "尚未创建班级")
	case errors.Is(err, service.ErrExportNoEntries):
		response.NotFound(c, 17003, "该教师暂无排课")
	default:
		response.InternalError(c)
	}
}
