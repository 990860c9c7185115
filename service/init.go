/*
 * @module service/init
 * @description 服务初始化模块，负责全局服务装配与存储清理任务启动
 * @architecture 分层架构 - 服务层
 * @stateFlow 应用启动时执行初始化流程
 * @rules 全局服务在包加载时装配完成，控制器只读使用
 * @dependencies service/datastore, service/ingestion, service/analysis, service/cleaning, service/export, service/sqlfetch
 * @refs api/controllers
 */

package service

import (
	"log"
	"os"
	"time"

	"dataviz-service/service/analysis"
	"dataviz-service/service/cleaning"
	"dataviz-service/service/datastore"
	"dataviz-service/service/export"
	"dataviz-service/service/ingestion"
	"dataviz-service/service/monitoring"
	"dataviz-service/service/sqlfetch"
)

// 会话闲置默认过期时间
const defaultDatasetTTL = time.Hour

var (
	GlobalStore            *datastore.Store
	GlobalIngestionService *ingestion.Service
	GlobalAnalysisService  *analysis.Service
	GlobalCleaningService  *cleaning.Service
	GlobalExportService    *export.Service
	GlobalSQLFetchService  *sqlfetch.Service
)

func init() {
	initServices()
}

// initServices 初始化全局服务并启动存储清理任务
func initServices() {
	ttl := defaultDatasetTTL
	if val := os.Getenv("DATASET_TTL"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("[DEBUG] DATASET_TTL解析失败, 使用默认值 %s: %v", defaultDatasetTTL, err)
		} else {
			ttl = parsed
		}
	}

	GlobalStore = datastore.NewStore(ttl)
	GlobalStore.SetSweepObserver(func(liveSessions int) {
		monitoring.StoreSessions.Set(float64(liveSessions))
	})
	if err := GlobalStore.StartJanitor(); err != nil {
		log.Fatalf("存储清理任务启动失败: %v", err)
	}

	GlobalIngestionService = ingestion.NewService()
	GlobalAnalysisService = analysis.NewService()
	GlobalCleaningService = cleaning.NewService()
	GlobalExportService = export.NewService()
	GlobalSQLFetchService = sqlfetch.NewService()

	log.Println("服务初始化完成")
}
