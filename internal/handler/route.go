package handler

// Route binds a composed handler to an HTTP method and path. It carries
// metadata only; dispatch belongs to the transport adapter.
type Route struct {
	Method  string
	Path    string
	Config  Config
	Handler Func
	OpenAPI *OpenAPIMeta
}

// OpenAPIMeta is documentation metadata attached to a route. It never
// affects runtime behavior.
type OpenAPIMeta struct {
	Summary     string
	Description string
	OperationID string
	Tags        []string
}

// DefineRoute attaches method/path metadata to a handler.
func DefineRoute(method, path string, cfg Config, h Func) Route {
	return Route{Method: method, Path: path, Config: cfg, Handler: h}
}

// WithOpenAPI attaches OpenAPI metadata to a route.
func WithOpenAPI(r Route, meta OpenAPIMeta) Route {
	r.OpenAPI = &meta
	return r
}
