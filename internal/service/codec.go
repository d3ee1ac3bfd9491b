// Package service exposes the ledger gateway and the authenticator as Connect
// RPC services. Messages are plain Go structs carried by a JSON codec, so the
// services speak the Connect protocol with Content-Type application/json.
package service

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// jsonCodec replaces connect's protobuf-backed JSON codec with encoding/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON is the codec option every handler and client in this package uses.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func procedure(service, method string) string {
	return "/" + service + "/" + method
}

// handle mounts one unary method of service on mux.
func handle[Req, Res any](
	mux *http.ServeMux,
	service, method string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts ...connect.HandlerOption,
) {
	path := procedure(service, method)
	mux.Handle(path, connect.NewUnaryHandler(path, fn, opts...))
}

// unary calls one method of service at baseURL.
func unary[Req, Res any](httpClient connect.HTTPClient, baseURL, service, method string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure(service, method), opts...)
}
