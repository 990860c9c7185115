/*
 * @module api/controllers/cleaning_controller
 * @description 数据清洗控制器，执行清洗任务并保存清洗结果
 * @architecture MVC架构 - 控制器层
 * @stateFlow 读取会话数据 -> 执行清洗任务 -> 写入清洗槽位 -> 返回预览
 * @rules 会话内无数据或任务未知返回400；bypass直接把上传数据标记为已清洗
 * @dependencies dataviz-service/service, github.com/go-chi/render
 * @refs service/cleaning, service/datastore
 */

package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"dataviz-service/service"
	"dataviz-service/service/cleaning"
	"dataviz-service/service/models"
	"dataviz-service/service/monitoring"
)

// 清洗预览行数
const cleanedPreviewRows = 10

// CleaningController 数据清洗控制器
type CleaningController struct{}

// NewCleaningController 创建数据清洗控制器实例
func NewCleaningController() *CleaningController {
	return &CleaningController{}
}

// CleaningRequest 清洗任务请求
type CleaningRequest struct {
	Task      string      `json:"task"`
	FillValue interface{} `json:"fill_value"`
}

// CleaningResult 清洗结果
type CleaningResult struct {
	CleanedPreview models.Dataset `json:"cleaned_preview"`
	CleanedData    models.Dataset `json:"cleaned_data"`
}

// cleaningResult 组装清洗响应体
func cleaningResult(dataset models.Dataset) CleaningResult {
	preview := dataset
	if len(preview) > cleanedPreviewRows {
		preview = preview[:cleanedPreviewRows]
	}
	return CleaningResult{CleanedPreview: preview, CleanedData: dataset}
}

// Clean 执行清洗任务
// @Summary 执行清洗任务
// @Description 对当前会话数据执行remove_nulls/fill_nulls/standardize清洗任务
// @Tags 数据清洗
// @Accept json
// @Produce json
// @Param request body CleaningRequest true "清洗任务"
// @Success 200 {object} APIResponse{data=CleaningResult}
// @Failure 400 {object} APIResponse
// @Router /api/cleaning [post]
func (c *CleaningController) Clean(w http.ResponseWriter, r *http.Request) {
	dataset, ok := requireUploaded(w, r)
	if !ok {
		return
	}

	var req CleaningRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", nil))
		return
	}

	cleaned, err := service.GlobalCleaningService.Clean(dataset, req.Task, cleaning.Options{FillValue: req.FillValue})
	if err != nil {
		monitoring.CleaningTasksTotal.WithLabelValues(req.Task, "failed").Inc()
		if errors.Is(err, cleaning.ErrInvalidTask) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, BadRequestResponse("Invalid cleaning task", nil))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse(err.Error(), nil))
		return
	}

	service.GlobalStore.SetCleaned(sessionID(r), cleaned)
	monitoring.CleaningTasksTotal.WithLabelValues(req.Task, "ok").Inc()
	render.JSON(w, r, SuccessResponse("Cleaning task completed successfully", cleaningResult(cleaned)))
}

// Bypass 跳过清洗
// @Summary 跳过清洗
// @Description 将当前会话上传数据原样标记为已清洗
// @Tags 数据清洗
// @Produce json
// @Success 200 {object} APIResponse{data=CleaningResult}
// @Failure 400 {object} APIResponse
// @Router /api/bypass_cleaning [post]
func (c *CleaningController) Bypass(w http.ResponseWriter, r *http.Request) {
	dataset, ok := requireUploaded(w, r)
	if !ok {
		return
	}

	service.GlobalStore.SetCleaned(sessionID(r), dataset)
	render.JSON(w, r, SuccessResponse("Bypassed cleaning. Data is considered cleaned as is.", cleaningResult(dataset)))
}
