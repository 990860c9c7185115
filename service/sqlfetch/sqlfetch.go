/*
 * @module service/sqlfetch
 * @description 数据库浏览服务，按请求凭据连接并预览表数据
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 凭据建连 -> 表清单查询 -> 表名校验 -> 限量预览 -> 断开
 * @rules 连接按请求建立用完即关，不做连接池；表名必须出现在表清单中才允许预览
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite
 * @refs service/models
 */

package sqlfetch

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dataviz-service/service/models"
)

const defaultPreviewLimit = 100

var (
	// ErrConnectionFailed 数据库连接失败
	ErrConnectionFailed = errors.New("connection failed, check your credentials")
	// ErrUnknownTable 表不在可见表清单中
	ErrUnknownTable = errors.New("table does not exist in the connected database")
	// ErrMissingTable 缺少表名参数
	ErrMissingTable = errors.New("missing table parameter")
)

// Config 单次请求的数据库连接配置
type Config struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslmode"`
	Path     string `json:"path"`
}

// Service 数据库浏览服务
type Service struct{}

// NewService 创建数据库浏览服务实例
func NewService() *Service {
	return &Service{}
}

// open 按配置建立连接，调用方负责调用返回的close
func open(cfg Config) (*gorm.DB, func(), error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, port, cfg.User, cfg.Password, cfg.DBName, sslmode)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

// ListTables 查询连接库中的可见表名
func (s *Service) ListTables(cfg Config) ([]string, error) {
	db, closeFn, err := open(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return listTables(db, cfg.Driver)
}

// listTables 按方言查询表清单
func listTables(db *gorm.DB, driver string) ([]string, error) {
	var tables []string
	var err error
	if driver == "sqlite" {
		err = db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name").Scan(&tables).Error
	} else {
		err = db.Raw("SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name").Scan(&tables).Error
	}
	if err != nil {
		return nil, fmt.Errorf("fetch tables: %w", err)
	}
	return tables, nil
}

// Preview 预览表数据，limit非正时取默认值
// 表名先对照表清单校验再拼接查询，防止注入
func (s *Service) Preview(cfg Config, table string, limit int) (models.Dataset, error) {
	if table == "" {
		return nil, ErrMissingTable
	}
	if limit <= 0 {
		limit = defaultPreviewLimit
	}

	db, closeFn, err := open(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	tables, err := listTables(db, cfg.Driver)
	if err != nil {
		return nil, err
	}
	known := false
	for _, name := range tables {
		if name == table {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	rows := []map[string]interface{}{}
	if err := db.Table(table).Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("preview table %s: %w", table, err)
	}

	dataset := make(models.Dataset, 0, len(rows))
	for _, row := range rows {
		dataset = append(dataset, models.Record(row))
	}
	return dataset, nil
}
