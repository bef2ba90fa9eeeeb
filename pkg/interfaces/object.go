package interfaces

import "context"

// Object 可按方法名调用的有状态对象
type Object interface {
	// Invoke 调用方法
	//
	// args 为位置参数，元素通常来自 JSON 解码（float64、string、[]any、map[string]any）。
	// 方法不存在时返回包装 types.ErrNotFound 的错误。
	Invoke(ctx context.Context, method string, args []any) (any, error)
}

// ObjectFactory 对象工厂
type ObjectFactory interface {
	// Create 为对象名创建新实例，name 可为组合形式 "kind/id"
	Create(name string) (Object, error)
}

// SignatureProvider 方法签名提供者
//
// 签名由对象实现者显式声明，不依赖源码解析。
type SignatureProvider interface {
	// SignatureOf 返回方法声明的有序参数名
	SignatureOf(name, method string) ([]string, error)

	// Methods 返回对象类型的全部公开方法及其参数名
	Methods(name string) (map[string][]string, error)
}
