/*
 * @module api/controllers/export_controller
 * @description 数据导出控制器，把清洗结果作为附件下载
 * @architecture MVC架构 - 控制器层
 * @stateFlow 读取清洗结果 -> 格式化导出 -> 附件响应
 * @rules 没有清洗结果或格式不支持返回400；成功时直接写文件内容
 * @dependencies dataviz-service/service, github.com/go-chi/render
 * @refs service/export, service/datastore
 */

package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"dataviz-service/service"
	"dataviz-service/service/export"
)

// ExportController 数据导出控制器
type ExportController struct{}

// NewExportController 创建数据导出控制器实例
func NewExportController() *ExportController {
	return &ExportController{}
}

// Export 导出清洗结果
// @Summary 导出清洗结果
// @Description 按format参数导出当前会话的清洗结果，支持csv与json
// @Tags 数据导出
// @Produce octet-stream
// @Param format query string false "导出格式" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} APIResponse
// @Router /api/export [get]
func (c *ExportController) Export(w http.ResponseWriter, r *http.Request) {
	dataset, err := service.GlobalStore.Cleaned(sessionID(r))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No cleaned data available to export", nil))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	result, err := service.GlobalExportService.Export(dataset, format)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, export.ErrUnsupportedFormat) {
			render.JSON(w, r, BadRequestResponse("Unsupported export format", nil))
			return
		}
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
}
