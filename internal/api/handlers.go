package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dep2p/go-dapp/internal/core/rpc"
	"github.com/dep2p/go-dapp/pkg/types"
)

// ============================================================================
//                              身份与节点
// ============================================================================

func (s *Server) handleIdentity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.Identity{
		App:           types.AppName,
		URL:           s.self,
		Description:   s.node.Description,
		Documentation: s.node.Documentation,
	})
}

func (s *Server) handleNodes(w http.ResponseWriter, _ *http.Request) {
	peers := s.nodes.List()
	urls := make([]types.Endpoint, 0, len(peers))
	for _, p := range peers {
		urls = append(urls, p.Endpoint)
	}
	writeJSON(w, http.StatusOK, urls)
}

// statusBody /nodes/connect 与 /nodes/disconnect 的响应体
//
// 目录操作不对外报错：非法输入按空操作处理，同样返回 success。
type statusBody struct {
	Status string  `json:"status"`
	Error  *string `json:"error"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if ep, err := readNodeURL(r); err != nil {
		log.Debug("ignored connect request", "error", err)
	} else {
		s.nodes.Connect(ep)
	}
	writeSuccess(w)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if ep, err := readNodeURL(r); err != nil {
		log.Debug("ignored disconnect request", "error", err)
	} else {
		s.nodes.Disconnect(ep)
	}
	writeSuccess(w)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	report, err := s.nodes.Scan(r.Context())
	if err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// readNodeURL 解析 {"url": "..."} 请求体
func readNodeURL(r *http.Request) (types.Endpoint, error) {
	var body struct {
		URL string `json:"url"`
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("malformed body: %w", err)
	}
	if body.URL == "" {
		return "", errors.New("missing url")
	}
	ep := types.NormalizeEndpoint(body.URL)
	if ep.IsZero() {
		return "", fmt.Errorf("invalid url %q", body.URL)
	}
	return ep, nil
}

// ============================================================================
//                              对象
// ============================================================================

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	local, err := queryBool(r, "local")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	remote, err := queryBool(r, "remote")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.objects.List(local, remote))
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)
	methods, err := s.objects.ListMethods(name)
	if err != nil {
		writeText(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (s *Server) handleReadCode(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)
	if s.codes == nil {
		writeText(w, http.StatusNotFound, fmt.Sprintf("Object %q not found", name))
		return
	}

	data, err := s.codes.Read(name)
	if err != nil {
		if errors.Is(err, types.ErrCodeUnavailable) {
			writeText(w, http.StatusNotFound, fmt.Sprintf("Object %q not found", name))
			return
		}
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleSaveCode(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)
	if s.codes == nil {
		writeText(w, http.StatusNotImplemented, "code store is disabled")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.codes.Save(name, data); err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("saved object code", "object", name, "bytes", len(data))
	writeText(w, http.StatusOK, fmt.Sprintf("Sourcecode of object %q saved", name))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)
	if _, err := s.objects.Start(name); err != nil {
		writeText(w, errorStatus(err), err.Error())
		return
	}
	writeText(w, http.StatusOK, "started object "+name)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)
	if err := s.objects.Stop(name); err != nil {
		writeText(w, errorStatus(err), err.Error())
		return
	}
	writeText(w, http.StatusOK, "stopped object "+name)
}

// ============================================================================
//                              RPC
// ============================================================================

// handleRPC 总是以 200 返回响应信封
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)

	var res *types.ResultEnvelope
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		res = types.NewResultEnvelope(nil, nil, fmt.Errorf("%w: read body: %v", types.ErrProtocol, err))
	} else {
		res = s.router.HandleRaw(r.Context(), name, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rpc.EncodeResult(res))
}

// ============================================================================
//                              工具函数
// ============================================================================

// objectName 从路由变量中取出对象名，组合名为 kind/id
func objectName(r *http.Request) string {
	vars := mux.Vars(r)
	if name, ok := vars["name"]; ok {
		return name
	}
	return vars["kind"] + "/" + vars["id"]
}

// queryBool 解析查询参数中的布尔值，缺省为 true
func queryBool(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for %s", v, key)
	}
	return b, nil
}

// errorStatus 错误分类对应的 HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrCodeUnavailable):
		return http.StatusNotFound
	case errors.Is(err, types.ErrLifecycle):
		return http.StatusConflict
	case errors.Is(err, types.ErrProtocol):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrRemoteCall):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to encode response", "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, statusBody{Status: "success"})
}
