package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// RequestValidator checks requests against an OpenAPI document. Paths in the
// document are relative to basePath.
type RequestValidator struct {
	router   routers.Router
	basePath string
	logger   *slog.Logger
}

func LoadOpenAPI(ctx context.Context, specPath string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec %s: %w", specPath, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec %s: %w", specPath, err)
	}
	return doc, nil
}

func NewRequestValidator(doc *openapi3.T, basePath string, logger *slog.Logger) (*RequestValidator, error) {
	// Matching happens on the path below basePath, so server entries are
	// dropped from the routing copy.
	routingDoc := *doc
	routingDoc.Servers = nil

	router, err := legacy.NewRouter(&routingDoc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{
		router:   router,
		basePath: strings.TrimRight(basePath, "/"),
		logger:   logger,
	}, nil
}

// Middleware rejects requests that contradict the document with a 400.
// Requests for undocumented routes pass through to the router.
func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, v.basePath+"/") {
			next.ServeHTTP(w, r)
			return
		}

		probe := r.Clone(r.Context())
		probe.URL.Path = strings.TrimPrefix(r.URL.Path, v.basePath)
		probe.URL.RawPath = ""

		route, pathParams, err := v.router.FindRoute(probe)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    probe,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				ExcludeRequestBody: strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/"),
			},
		}

		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.logger.WarnContext(r.Context(), "request rejected by openapi validation",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err)

			appErr := internal.NewValidationError("Request does not match the API schema", internal.ErrCodeValidationFailed).
				WithDetails(map[string]string{"reason": err.Error()})
			status, body := appErr.ToHTTPResponse()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
			return
		}

		// validation may have consumed and replaced the body on the probe
		r.Body = probe.Body
		next.ServeHTTP(w, r)
	})
}
