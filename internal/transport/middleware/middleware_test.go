package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/field-expense/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = ginkgo.Describe("CORS", func() {
	ginkgo.It("echoes a listed origin with credentials", func() {
		h := CORS("https://a.example, https://b.example")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://b.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("https://b.example"))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(gomega.Equal("true"))
	})

	ginkgo.It("ignores unlisted origins", func() {
		h := CORS("https://a.example")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.BeEmpty())
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("answers preflight without calling the handler", func() {
		called := false
		h := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("*"))
		gomega.Expect(called).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("RequestID", func() {
	ginkgo.It("keeps an incoming trace id and scopes the logger", func() {
		var scoped bool
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, scoped = logger.Scoped(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get(TraceHeader)).To(gomega.Equal("trace-123"))
		gomega.Expect(scoped).To(gomega.BeTrue())
	})

	ginkgo.It("generates a trace id when none is sent", func() {
		rec := httptest.NewRecorder()
		RequestID(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		gomega.Expect(rec.Header().Get(TraceHeader)).To(gomega.HaveLen(36))
	})
})

var _ = ginkgo.Describe("RecoveryMiddleware", func() {
	ginkgo.It("turns a panic into a 500 JSON error", func() {
		h := RecoveryMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
		gomega.Expect(rec.Header().Get("Content-Type")).To(gomega.Equal("application/json"))
		gomega.Expect(rec.Body.String()).NotTo(gomega.ContainSubstring("boom"))
	})

	ginkgo.It("lets ErrAbortHandler through", func() {
		h := RecoveryMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		gomega.Expect(func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(gomega.PanicWith(http.ErrAbortHandler))
	})
})

var _ = ginkgo.Describe("LoggingMiddleware", func() {
	ginkgo.It("masks credentials in logged bodies", func() {
		out := filterSensitiveBody([]byte(`{"email":"a@b.c","password":"hunter2","cards":[{"refresh_token":"t"}]}`))
		gomega.Expect(out).NotTo(gomega.ContainSubstring("hunter2"))
		gomega.Expect(out).To(gomega.ContainSubstring(`"email":"a@b.c"`))
		gomega.Expect(out).To(gomega.ContainSubstring(`"refresh_token":"[FILTERED]"`))
	})

	ginkgo.It("masks the authorization header", func() {
		h := http.Header{}
		h.Set("Authorization", "Bearer abc")
		h.Set("Accept", "application/json")
		filtered := filterSensitiveHeaders(h)
		gomega.Expect(filtered["Authorization"]).To(gomega.Equal("[FILTERED]"))
		gomega.Expect(filtered["Accept"]).To(gomega.Equal("application/json"))
	})

	ginkgo.It("leaves the request body readable for the handler", func() {
		var seen string
		h := LoggingMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
			w.WriteHeader(http.StatusCreated)
		}))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/missions", strings.NewReader(`{"name":"Survey"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		gomega.Expect(seen).To(gomega.Equal(`{"name":"Survey"}`))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
	})
})
