package codestore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("codestore")

// keyPrefix 代码键前缀
const keyPrefix = "code/"

// ErrClosed 存储已关闭
var ErrClosed = errors.New("codestore: closed")

// 确保 Store 实现接口
var _ interfaces.CodeStore = (*Store)(nil)

// Store BadgerDB 代码存储
type Store struct {
	db        *badger.DB
	cache     *lru.Cache[string, []byte]
	transport interfaces.Transport
	limiter   *rate.Limiter
	flight    singleflight.Group
	metrics   *metrics.Collector
	closed    atomic.Bool
}

// New 打开代码存储
//
// transport 可为 nil，此时 Fetch 只记录日志。
func New(cfg config.CodeStoreConfig, transport interfaces.Transport, collector *metrics.Collector) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := badger.Open(buildBadgerOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("codestore: open badger: %w", err)
	}

	cache, err := lru.New[string, []byte](cfg.CacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:        db,
		cache:     cache,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(cfg.FetchRate), cfg.FetchBurst),
		metrics:   collector,
	}, nil
}

// buildBadgerOptions 根据配置构建 BadgerDB 选项
func buildBadgerOptions(cfg config.CodeStoreConfig) badger.Options {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.DBPath())
	}

	// 代码文件较小，内存表与值日志按小规模数据配置
	return opts.
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{})
}

// badgerLogger 将 badger 日志转发到 slog
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error(fmt.Sprintf(format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn(fmt.Sprintf(format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug(fmt.Sprintf(format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Debug(fmt.Sprintf(format, args...))
}

func key(name string) []byte {
	return []byte(keyPrefix + types.Kind(name))
}

// Has 本地是否存在代码
func (s *Store) Has(name string) bool {
	if s.closed.Load() {
		return false
	}
	if s.cache.Contains(types.Kind(name)) {
		return true
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(name))
		return err
	})
	return err == nil
}

// Read 读取代码
func (s *Store) Read(name string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	kind := types.Kind(name)
	if data, ok := s.cache.Get(kind); ok {
		return data, nil
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, convertError(kind, err)
	}

	s.cache.Add(kind, data)
	return data, nil
}

// Save 保存代码
func (s *Store) Save(name string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if types.Kind(name) == "" {
		return fmt.Errorf("%w: empty object name", types.ErrNotFound)
	}

	data = append([]byte(nil), data...)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(name), data)
	})
	if err != nil {
		return err
	}

	s.cache.Add(types.Kind(name), data)
	return nil
}

// Fetch 若本地不存在代码，从 endpoint 拉取并保存
//
// 失败只记录日志。同一类型的并发调用共享一次拉取。
func (s *Store) Fetch(ctx context.Context, name string, endpoint types.Endpoint) {
	kind := types.Kind(name)
	if s.closed.Load() || s.Has(kind) {
		return
	}
	if s.transport == nil {
		log.Warn("code fetch skipped, no transport", "name", kind)
		return
	}

	_, err, _ := s.flight.Do(kind, func() (any, error) {
		return nil, s.fetch(ctx, kind, endpoint)
	})
	if err != nil {
		s.metrics.ObserveCodeFetch(types.CodeOf(err))
		log.Warn("code fetch failed", "name", kind, "endpoint", endpoint, "err", err)
		return
	}
}

func (s *Store) fetch(ctx context.Context, kind string, endpoint types.Endpoint) error {
	if s.Has(kind) {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	log.Debug("code not available locally, fetching", "name", kind, "endpoint", endpoint)
	data, err := s.transport.FetchCode(ctx, endpoint, kind)
	if err != nil {
		return err
	}
	if err := s.Save(kind, data); err != nil {
		return err
	}

	s.metrics.ObserveCodeFetch(metrics.OutcomeOK)
	log.Info("code retrieved", "name", kind, "endpoint", endpoint, "bytes", len(data))
	return nil
}

// Close 关闭存储
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cache.Purge()
	return s.db.Close()
}

// convertError 转换 BadgerDB 错误
func convertError(kind string, err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", types.ErrCodeUnavailable, kind)
	}
	return err
}
