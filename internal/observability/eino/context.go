package eino

import "context"

type providerKey struct{}
type purposeKey struct{}

// WithProvider 在 Context 中记录提供商名称，供回调打标签
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey{}, provider)
}

// ProviderFromContext 读取提供商名称
func ProviderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// WithPurpose 在 Context 中记录调用用途（iteration/chapter）
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFromContext 读取调用用途
func PurposeFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "default"
}
