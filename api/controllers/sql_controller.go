/*
 * @module api/controllers/sql_controller
 * @description 数据库浏览控制器，按请求凭据连接数据库并预览表数据
 * @architecture MVC架构 - 控制器层
 * @stateFlow 接收凭据 -> 建连查询 -> 预览写入会话 -> 断开
 * @rules 凭据随请求提交，不做任何持久化；预览结果写入会话供后续分析
 * @dependencies dataviz-service/service, github.com/go-chi/render
 * @refs service/sqlfetch, service/datastore
 */

package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"dataviz-service/service"
	"dataviz-service/service/sqlfetch"
)

// SQLController 数据库浏览控制器
type SQLController struct{}

// NewSQLController 创建数据库浏览控制器实例
func NewSQLController() *SQLController {
	return &SQLController{}
}

// ConnectResult 连接结果
type ConnectResult struct {
	Tables []string `json:"tables"`
}

// Connect 测试连接并列出表
// @Summary 测试连接并列出表
// @Description 使用请求中的凭据连接数据库，返回可见表清单
// @Tags 数据库浏览
// @Accept json
// @Produce json
// @Param config body sqlfetch.Config true "连接配置"
// @Success 200 {object} APIResponse{data=ConnectResult}
// @Failure 400 {object} APIResponse
// @Router /api/db/connect [post]
func (c *SQLController) Connect(w http.ResponseWriter, r *http.Request) {
	var cfg sqlfetch.Config
	if err := render.DecodeJSON(r.Body, &cfg); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", nil))
		return
	}

	tables, err := service.GlobalSQLFetchService.ListTables(cfg)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("Connection failed. Check your credentials.", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("连接成功", ConnectResult{Tables: tables}))
}

// PreviewRequest 表预览请求
type PreviewRequest struct {
	Table    string          `json:"table"`
	Limit    int             `json:"limit"`
	DBConfig sqlfetch.Config `json:"dbConfig"`
}

// Preview 预览表数据
// @Summary 预览表数据
// @Description 限量读取指定表的数据，结果写入当前会话作为上传数据
// @Tags 数据库浏览
// @Accept json
// @Produce json
// @Param request body PreviewRequest true "预览请求"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/preview [post]
func (c *SQLController) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", nil))
		return
	}

	dataset, err := service.GlobalSQLFetchService.Preview(req.DBConfig, req.Table, req.Limit)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		switch {
		case errors.Is(err, sqlfetch.ErrMissingTable):
			render.JSON(w, r, BadRequestResponse("Missing table parameter", nil))
		case errors.Is(err, sqlfetch.ErrUnknownTable):
			render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		default:
			render.JSON(w, r, BadRequestResponse("Connection failed. Check your credentials.", nil))
		}
		return
	}

	// 预览结果同时作为会话数据，便于直接走剖析与图表流程
	service.GlobalStore.SetUploaded(sessionID(r), dataset)
	render.JSON(w, r, SuccessResponse("查询成功", dataset))
}
