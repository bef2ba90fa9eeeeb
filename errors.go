package dapp

import (
	"errors"

	"github.com/dep2p/go-dapp/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 目录与调用错误（可用 errors.Is 匹配）
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotFound 对象类型或方法不存在
	ErrNotFound = types.ErrNotFound

	// ErrRemoteCall 远程节点不可达或响应无法解析
	ErrRemoteCall = types.ErrRemoteCall

	// ErrProtocol 调用信封格式错误
	ErrProtocol = types.ErrProtocol

	// ErrLifecycle 对象启停状态不允许该操作
	ErrLifecycle = types.ErrLifecycle

	// ErrCodeUnavailable 对象代码不可用
	ErrCodeUnavailable = types.ErrCodeUnavailable

	// ErrInvoke 对象方法执行失败
	ErrInvoke = types.ErrInvoke
)
