/*
 * @module api/controllers/analysis_controller
 * @description 数据剖析控制器，提供数值汇总、类别统计与描述性统计查询
 * @architecture MVC架构 - 控制器层
 * @stateFlow 读取会话数据 -> 列分析 -> 统计输出
 * @rules 会话内无数据返回400；列不存在或类型不符返回400
 * @dependencies dataviz-service/service, github.com/go-chi/render
 * @refs service/analysis, service/datastore
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"

	"dataviz-service/service"
	"dataviz-service/service/models"
	"dataviz-service/service/nlp"
)

// AnalysisController 数据剖析控制器
type AnalysisController struct{}

// NewAnalysisController 创建数据剖析控制器实例
func NewAnalysisController() *AnalysisController {
	return &AnalysisController{}
}

// DatasetProfile 数据集概览
type DatasetProfile struct {
	DataInfo           string                    `json:"data_info"`
	NumericSummary     map[string]float64        `json:"numeric_summary"`
	CategoricalSummary map[string]map[string]int `json:"categorical_summary"`
}

// requireUploaded 读取会话上传数据，缺失时写出400
func requireUploaded(w http.ResponseWriter, r *http.Request) (models.Dataset, bool) {
	dataset, err := service.GlobalStore.Uploaded(sessionID(r))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No file has been uploaded yet", nil))
		return nil, false
	}
	return dataset, true
}

// Numbers 数据集概览
// @Summary 数据集概览
// @Description 返回当前会话数据集的结构信息与数值、类别汇总
// @Tags 数据剖析
// @Produce json
// @Success 200 {object} APIResponse{data=DatasetProfile}
// @Failure 400 {object} APIResponse
// @Router /api/numbers [get]
func (c *AnalysisController) Numbers(w http.ResponseWriter, r *http.Request) {
	dataset, ok := requireUploaded(w, r)
	if !ok {
		return
	}

	columns := nlp.AnalyseColumns(dataset)
	render.JSON(w, r, SuccessResponse("查询成功", DatasetProfile{
		DataInfo:           service.GlobalAnalysisService.Profile(dataset, columns),
		NumericSummary:     service.GlobalAnalysisService.NumericSummary(columns),
		CategoricalSummary: service.GlobalAnalysisService.CategoricalSummary(columns),
	}))
}

// CatStats 类别列统计
// @Summary 类别列统计
// @Description 返回指定类别列的值频次与众数
// @Tags 数据剖析
// @Produce json
// @Param columnName query string true "列名"
// @Success 200 {object} APIResponse{data=analysis.CatStats}
// @Failure 400 {object} APIResponse
// @Router /api/catstats [get]
func (c *AnalysisController) CatStats(w http.ResponseWriter, r *http.Request) {
	dataset, ok := requireUploaded(w, r)
	if !ok {
		return
	}

	columnName := r.URL.Query().Get("columnName")
	if columnName == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No 'columnName' parameter provided", nil))
		return
	}

	columns := nlp.AnalyseColumns(dataset)
	stats, err := service.GlobalAnalysisService.CategoryStats(columns, columnName)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", stats))
}

// CategoricalColumns 类别列清单
// @Summary 类别列清单
// @Description 返回当前数据集中全部类别列名
// @Tags 数据剖析
// @Produce json
// @Success 200 {object} APIResponse{data=[]string}
// @Failure 400 {object} APIResponse
// @Router /api/categorical-columns [get]
func (c *AnalysisController) CategoricalColumns(w http.ResponseWriter, r *http.Request) {
	dataset, ok := requireUploaded(w, r)
	if !ok {
		return
	}
	columns := nlp.AnalyseColumns(dataset)
	render.JSON(w, r, SuccessResponse("查询成功", service.GlobalAnalysisService.CategoricalColumns(columns)))
}

// Stats 数值列描述性统计
// @Summary 数值列描述性统计
// @Description 返回数值列的均值、中位数和众数
// @Tags 数据剖析
// @Produce json
// @Success 200 {object} APIResponse{data=analysis.Stats}
// @Failure 400 {object} APIResponse
// @Router /api/stats [get]
func (c *AnalysisController) Stats(w http.ResponseWriter, r *http.Request) {
	dataset, ok := requireUploaded(w, r)
	if !ok {
		return
	}

	columns := nlp.AnalyseColumns(dataset)
	stats, err := service.GlobalAnalysisService.NumericStats(columns)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", stats))
}

// filteredUploadRequest 前端回传过滤结果的请求体
type filteredUploadRequest struct {
	DataPreview []models.Record `json:"data_preview"`
}

// FilteredUpload 回传过滤后的数据集
// @Summary 回传过滤后的数据集
// @Description 接收前端过滤后的记录集并覆盖当前会话数据
// @Tags 数据剖析
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/filtered-upload [post]
func (c *AnalysisController) FilteredUpload(w http.ResponseWriter, r *http.Request) {
	var req filteredUploadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.DataPreview == nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("Missing 'data_preview' key", nil))
		return
	}

	service.GlobalStore.SetUploaded(sessionID(r), models.Dataset(req.DataPreview))
	render.JSON(w, r, SuccessResponse("Filtered data received and stored", nil))
}
