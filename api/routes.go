/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理，数据集按会话保存在内存存储
 * @rules 统一错误处理和响应格式；/api/nlp/chart保持前端兼容的扁平响应
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"dataviz-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Session-ID"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	r.Route("/api", func(r chi.Router) {
		// 自然语言图表
		nlpChartController := controllers.NewNLPChartController()
		r.Post("/nlp/chart", nlpChartController.GenerateChart)

		// 文件上传
		uploadController := controllers.NewUploadController()
		r.Post("/upload", uploadController.Upload)
		r.Post("/raw_upload", uploadController.RawUpload)

		// 数据剖析
		analysisController := controllers.NewAnalysisController()
		r.Get("/numbers", analysisController.Numbers)
		r.Get("/catstats", analysisController.CatStats)
		r.Get("/categorical-columns", analysisController.CategoricalColumns)
		r.Get("/stats", analysisController.Stats)
		r.Post("/filtered-upload", analysisController.FilteredUpload)

		// 数据清洗
		cleaningController := controllers.NewCleaningController()
		r.Post("/cleaning", cleaningController.Clean)
		r.Post("/bypass_cleaning", cleaningController.Bypass)

		// 数据导出
		exportController := controllers.NewExportController()
		r.Get("/export", exportController.Export)

		// 数据库浏览
		sqlController := controllers.NewSQLController()
		r.Post("/db/connect", sqlController.Connect)
		r.Post("/preview", sqlController.Preview)
	})
}
