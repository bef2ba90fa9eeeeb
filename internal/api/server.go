package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("api")

// maxBodySize 请求体上限
const maxBodySize = 8 << 20

// Server 节点 HTTP 服务
type Server struct {
	self    types.Endpoint
	node    config.NodeConfig
	nodes   interfaces.NodeRegistry
	objects interfaces.ObjectRegistry
	router  interfaces.CallRouter
	codes   interfaces.CodeStore
	metrics http.Handler

	listener net.Listener
	server   *http.Server

	running bool
	mu      sync.Mutex
}

// Config 服务配置
type Config struct {
	// Self 本节点地址，出现在身份探测响应中
	Self types.Endpoint

	// Node 节点描述信息
	Node config.NodeConfig

	// Nodes 必需的节点注册表
	Nodes interfaces.NodeRegistry

	// Objects 必需的对象目录
	Objects interfaces.ObjectRegistry

	// Router 必需的调用路由
	Router interfaces.CallRouter

	// CodeStore 可选的代码存储
	CodeStore interfaces.CodeStore

	// Metrics 可选的指标处理器
	Metrics http.Handler
}

// New 创建 HTTP 服务
func New(cfg Config) *Server {
	return &Server{
		self:    cfg.Self,
		node:    cfg.Node,
		nodes:   cfg.Nodes,
		objects: cfg.Objects,
		router:  cfg.Router,
		codes:   cfg.CodeStore,
		metrics: cfg.Metrics,
	}
}

// Handler 返回全部路由
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/", s.handleIdentity).Methods(http.MethodGet)

	r.HandleFunc("/nodes", s.handleNodes).Methods(http.MethodGet)
	r.HandleFunc("/nodes/connect", s.handleConnect).Methods(http.MethodPost)
	r.HandleFunc("/nodes/disconnect", s.handleDisconnect).Methods(http.MethodPost)
	r.HandleFunc("/nodes/scan", s.handleScan).Methods(http.MethodGet)

	r.HandleFunc("/objects", s.handleObjects).Methods(http.MethodGet)
	// 动作路由先于组合名路由注册，/objects/x/start 不会被当作对象 x/start
	for _, prefix := range []string{"/objects/{name}", "/objects/{kind}/{id}"} {
		r.HandleFunc(prefix+"/code", s.handleReadCode).Methods(http.MethodGet)
		r.HandleFunc(prefix+"/code", s.handleSaveCode).Methods(http.MethodPost)
		r.HandleFunc(prefix+"/start", s.handleStart).Methods(http.MethodGet)
		r.HandleFunc(prefix+"/stop", s.handleStop).Methods(http.MethodGet)
	}
	r.HandleFunc("/objects/{name}", s.handleMethods).Methods(http.MethodGet)
	r.HandleFunc("/objects/{kind}/{id}", s.handleMethods).Methods(http.MethodGet)

	r.HandleFunc("/rpc/{name}", s.handleRPC).Methods(http.MethodPost)
	r.HandleFunc("/rpc/{kind}/{id}", s.handleRPC).Methods(http.MethodPost)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	return r
}

// Start 在 ln 上开始服务
func (s *Server) Start(ln net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if ln == nil {
		return errors.New("api: nil listener")
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server exited", "error", err)
		}
	}()

	s.running = true
	log.Info("node listening", "url", s.self)
	return nil
}

// Stop 停止服务，等待进行中的请求结束
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("failed to shut down http server", "error", err)
		return err
	}

	s.running = false
	log.Info("http server stopped")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Self 本节点地址
func (s *Server) Self() types.Endpoint {
	return s.self
}

// ============================================================================
//                              请求日志
// ============================================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start))
	})
}
