/*
 * @module api/controllers/nlp_chart_controller
 * @description 自然语言图表API控制器，串联数据提取、列分析、查询解析和图表构建
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程，引擎按请求计算，不跨请求保留状态
 * @rules 查询或数据集缺失返回400；无法构建图表返回422并附用法提示
 * @dependencies dataviz-service/service/nlp, github.com/go-chi/render
 * @refs service/nlp, service/models
 */

package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"dataviz-service/service"
	"dataviz-service/service/models"
	"dataviz-service/service/monitoring"
	"dataviz-service/service/nlp"
)

// NLPChartController 自然语言图表控制器
type NLPChartController struct{}

// NewNLPChartController 创建自然语言图表控制器实例
func NewNLPChartController() *NLPChartController {
	return &NLPChartController{}
}

// NLPChartRequest 图表生成请求
type NLPChartRequest struct {
	Query   string      `json:"query"`
	Dataset interface{} `json:"dataset"`
}

// NLPChartResponse 图表生成响应
type NLPChartResponse struct {
	Intent         string               `json:"intent"`
	ChartType      models.ChartType     `json:"chartType"`
	ChartData      *models.ChartData    `json:"chartData"`
	Explanation    string               `json:"explanation"`
	FieldsUsed     models.Fields        `json:"fieldsUsed"`
	FieldMatches   []models.ColumnMatch `json:"fieldMatches"`
	FiltersApplied []models.Filter      `json:"filtersApplied"`
	UsageFormat    string               `json:"usageFormat"`
}

// nlpErrorBody 错误响应体，422时附带解析明细
type nlpErrorBody struct {
	Intent         string               `json:"intent,omitempty"`
	Error          string               `json:"error"`
	FieldsUsed     *models.Fields       `json:"fieldsUsed,omitempty"`
	FieldMatches   []models.ColumnMatch `json:"fieldMatches,omitempty"`
	FiltersApplied []models.Filter      `json:"filtersApplied,omitempty"`
	UsageFormat    string               `json:"usageFormat"`
}

// storedDataset 请求未附数据集时回退到会话里已清洗或已上传的数据
func storedDataset(r *http.Request) models.Dataset {
	sid := sessionID(r)
	if cleaned, err := service.GlobalStore.Cleaned(sid); err == nil {
		return cleaned
	}
	if uploaded, err := service.GlobalStore.Uploaded(sid); err == nil {
		return uploaded
	}
	return nil
}

// badRequest 400响应
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, nlpErrorBody{Error: msg, UsageFormat: nlp.QueryFormat})
}

// GenerateChart 从自然语言查询生成图表
// @Summary 自然语言生成图表
// @Description 解析自然语言查询，对随请求提交的数据集做确定性聚合并返回Chart.js图表数据
// @Tags 自然语言图表
// @Accept json
// @Produce json
// @Param request body NLPChartRequest true "查询与数据集"
// @Success 200 {object} NLPChartResponse
// @Failure 400 {object} object
// @Failure 422 {object} object
// @Router /api/nlp/chart [post]
func (c *NLPChartController) GenerateChart(w http.ResponseWriter, r *http.Request) {
	var req NLPChartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		monitoring.ChartRequestsTotal.WithLabelValues("none", "bad_request").Inc()
		badRequest(w, r, "A natural language query is required.")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		monitoring.ChartRequestsTotal.WithLabelValues("none", "bad_request").Inc()
		badRequest(w, r, "A natural language query is required.")
		return
	}

	dataset := nlp.ExtractDataset(req.Dataset)
	if len(dataset) == 0 {
		dataset = storedDataset(r)
	}
	if len(dataset) == 0 {
		monitoring.ChartRequestsTotal.WithLabelValues("none", "bad_request").Inc()
		badRequest(w, r, "A valid dataset is required to build a chart.")
		return
	}
	log.Printf("[DEBUG] 图表请求数据集 %d 行", len(dataset))

	columns := nlp.AnalyseColumns(dataset)
	if len(columns) == 0 {
		monitoring.ChartRequestsTotal.WithLabelValues("none", "bad_request").Inc()
		badRequest(w, r, "Unable to inspect dataset columns.")
		return
	}

	started := time.Now()
	interpretation := nlp.InterpretQuery(query, columns)
	log.Printf("[DEBUG] 字段解析结果 value=%s category=%s time=%s",
		interpretation.Fields.Value, interpretation.Fields.Category, interpretation.Fields.Time)

	result, err := nlp.BuildChart(dataset, interpretation)
	monitoring.ChartBuildDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		monitoring.ChartRequestsTotal.WithLabelValues(string(interpretation.ChartType), "unprocessable").Inc()
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, nlpErrorBody{
			Intent:         interpretation.Intent,
			Error:          "Could not generate a chart for the given request.",
			FieldsUsed:     &interpretation.Fields,
			FieldMatches:   interpretation.MatchDetails,
			FiltersApplied: interpretation.Filters,
			UsageFormat:    nlp.QueryFormat,
		})
		return
	}

	monitoring.ChartRequestsTotal.WithLabelValues(string(result.ChartType), "ok").Inc()
	render.JSON(w, r, NLPChartResponse{
		Intent:         interpretation.Intent,
		ChartType:      result.ChartType,
		ChartData:      result.ChartData,
		Explanation:    explanationMessage(result.ChartType, interpretation.Fields),
		FieldsUsed:     interpretation.Fields,
		FieldMatches:   interpretation.MatchDetails,
		FiltersApplied: interpretation.Filters,
		UsageFormat:    nlp.QueryFormat,
	})
}

// explanationMessage 基于解析字段生成一句话说明
func explanationMessage(chartType models.ChartType, fields models.Fields) string {
	kind := strings.ToLower(string(chartType))
	if fields.Value != "" && fields.Category != "" {
		return fmt.Sprintf("Here is a %s chart showing %s by %s.", kind, fields.Value, fields.Category)
	}
	if fields.Value != "" && fields.Time != "" {
		return fmt.Sprintf("Here is a %s chart showing %s over %s.", kind, fields.Value, fields.Time)
	}
	return fmt.Sprintf("Here is a %s chart derived from the dataset.", kind)
}
