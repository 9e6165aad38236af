package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

const limitsDoc = `
openapi: 3.0.3
info:
  title: limits
  version: "1"
servers:
  - url: /api/v1
paths:
  /limits/{category}:
    put:
      parameters:
        - name: category
          in: path
          required: true
          schema:
            type: string
            enum: [travel, cash]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [daily_limit]
              properties:
                daily_limit:
                  type: string
      responses:
        "200":
          description: ok
`

var _ = ginkgo.Describe("RequestValidator", func() {
	var (
		handler  http.Handler
		seenBody string
		reached  bool
	)

	ginkgo.BeforeEach(func() {
		doc, err := openapi3.NewLoader().LoadFromData([]byte(limitsDoc))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(doc.Validate(context.Background())).To(gomega.Succeed())

		v, err := NewRequestValidator(doc, "/api/v1", discardLogger())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		seenBody, reached = "", false
		handler = v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			b, _ := io.ReadAll(r.Body)
			seenBody = string(b)
			w.WriteHeader(http.StatusOK)
		}))
	})

	put := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.It("passes a conforming request with its body intact", func() {
		rec := put("/api/v1/limits/travel", `{"daily_limit":"100"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(reached).To(gomega.BeTrue())
		gomega.Expect(seenBody).To(gomega.MatchJSON(`{"daily_limit":"100"}`))
	})

	ginkgo.It("rejects an unknown path parameter value", func() {
		rec := put("/api/v1/limits/boat", `{"daily_limit":"100"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(reached).To(gomega.BeFalse())

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		gomega.Expect(body.Error.Code).To(gomega.Equal("VALIDATION_FAILED"))
	})

	ginkgo.It("rejects a body missing a required field", func() {
		rec := put("/api/v1/limits/cash", `{}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(reached).To(gomega.BeFalse())
	})

	ginkgo.It("lets undocumented routes through", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		gomega.Expect(reached).To(gomega.BeTrue())
	})

	ginkgo.It("ignores paths outside the base path", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		gomega.Expect(reached).To(gomega.BeTrue())
	})
})
