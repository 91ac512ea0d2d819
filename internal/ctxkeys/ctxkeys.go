package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	instanceIDKey contextKey = "instance_id"
)

// WithSessionID 设置插件会话 ID（每次 OnLoad 生成一个新会话）
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionID 获取插件会话 ID
func SessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithInstanceID 设置编辑器实例标识
func WithInstanceID(ctx context.Context, instanceID string) context.Context {
	return context.WithValue(ctx, instanceIDKey, instanceID)
}

// InstanceID 获取编辑器实例标识
func InstanceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(instanceIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
