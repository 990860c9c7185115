/*
 * @module service/datastore
 * @description 内存数据集存储，按会话保存上传数据与清洗结果，带TTL过期回收
 * @architecture 分层架构 - 存储层
 * @stateFlow 上传写入 -> 清洗写入 -> 读取消费 -> 定时回收过期会话
 * @rules 读写加锁；过期会话由cron定时清理；会话ID由uuid生成
 * @dependencies github.com/google/uuid, github.com/robfig/cron/v3
 * @refs service/models
 */

package datastore

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"dataviz-service/service/models"
)

// DefaultSession 未显式携带会话ID的请求共享此会话
const DefaultSession = "default"

// 过期会话清理周期
const janitorSpec = "@every 1m"

var (
	// ErrNoUploadedData 会话中没有已上传数据
	ErrNoUploadedData = errors.New("no file has been uploaded yet")
	// ErrNoCleanedData 会话中没有清洗结果
	ErrNoCleanedData = errors.New("no cleaned data available")
)

// session 单个会话的数据槽位
type session struct {
	uploaded  models.Dataset
	cleaned   models.Dataset
	touchedAt time.Time
}

// Store 会话级内存数据集存储
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*session
	cron     *cron.Cron

	// 每次清理后回调存活会话数，用于指标上报
	sweepObserver func(liveSessions int)
}

// SetSweepObserver 注册清理回调，需在StartJanitor之前调用
func (s *Store) SetSweepObserver(fn func(liveSessions int)) {
	s.sweepObserver = fn
}

// NewStore 创建存储实例，ttl为会话闲置过期时间
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

// StartJanitor 启动过期会话清理任务
func (s *Store) StartJanitor() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(janitorSpec, func() {
		removed := s.Sweep(time.Now())
		if removed > 0 {
			log.Printf("[DEBUG] 数据存储清理: 回收 %d 个过期会话", removed)
		}
		if s.sweepObserver != nil {
			s.sweepObserver(s.SessionCount())
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

// StopJanitor 停止清理任务
func (s *Store) StopJanitor() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// NewSessionID 生成新的会话ID
func (s *Store) NewSessionID() string {
	return uuid.New().String()
}

// getOrCreate 获取会话，不存在时创建。调用方需持有写锁
func (s *Store) getOrCreate(id string) *session {
	if id == "" {
		id = DefaultSession
	}
	entry, ok := s.sessions[id]
	if !ok {
		entry = &session{}
		s.sessions[id] = entry
	}
	entry.touchedAt = time.Now()
	return entry
}

// SetUploaded 写入上传数据，同时清空上一轮的清洗结果
func (s *Store) SetUploaded(id string, dataset models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.getOrCreate(id)
	entry.uploaded = dataset
	entry.cleaned = nil
}

// Uploaded 读取上传数据
func (s *Store) Uploaded(id string) (models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = DefaultSession
	}
	entry, ok := s.sessions[id]
	if !ok || entry.uploaded == nil {
		return nil, ErrNoUploadedData
	}
	entry.touchedAt = time.Now()
	return entry.uploaded, nil
}

// SetCleaned 写入清洗结果
func (s *Store) SetCleaned(id string, dataset models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.getOrCreate(id)
	entry.cleaned = dataset
}

// Cleaned 读取清洗结果
func (s *Store) Cleaned(id string) (models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = DefaultSession
	}
	entry, ok := s.sessions[id]
	if !ok || entry.cleaned == nil {
		return nil, ErrNoCleanedData
	}
	entry.touchedAt = time.Now()
	return entry.cleaned, nil
}

// Drop 删除指定会话
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep 回收闲置超过ttl的会话，返回回收数量
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if now.Sub(entry.touchedAt) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SessionCount 当前会话数量
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
