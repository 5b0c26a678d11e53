package probe

// ProxyResolver turns the opaque proxy setting a check carries into a proxy
// URL. Deployments back this with their secret manager; the default hands the
// setting through unchanged
type ProxyResolver interface {
	Resolve(setting string) (string, error)
}

// Passthrough treats the proxy setting as the proxy URL itself
type Passthrough struct{}

// Resolve returns the setting unchanged
func (Passthrough) Resolve(setting string) (string, error) { return setting, nil }
