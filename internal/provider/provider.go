package provider

import "context"

// Adapter is the single-method contract a concrete per-provider client
// implements. The router depends only on this interface; it never touches
// an adapter's transport internals.
//
// Implementations MUST validate at construction time that the API key is
// non-empty, returning a *gatewayerr.ConfigError if not. Generate should
// return *gatewayerr.NetworkError for transport failures that occur before
// an HTTP status is obtained, and *gatewayerr.ApiError for a non-2xx
// response or a malformed body.
type Adapter interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
