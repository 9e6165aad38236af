package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		router   chi.Router
		service  *Service
		mockRepo *mockUserRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		service = NewService(mockRepo, NewJWTTokenGenerator(testSecurityConfig()), bcrypt.MinCost, discardLogger())
		h := NewHandler(transport.NewBaseHandler(discardLogger()), service)
		rbac := service.RBACAuthorization()

		whoami := func(w http.ResponseWriter, r *http.Request) {
			user, _ := internal.UserFromContext(r.Context())
			h.WriteJSON(w, http.StatusOK, user)
		}

		router = chi.NewRouter()
		router.Post("/auth/login", h.Login)
		router.Post("/auth/refresh", h.RefreshToken)
		router.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Get("/me", whoami)
			r.With(rbac.RequireAdmin()).Get("/admin", whoami)
		})
	})

	post := func(path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, &buf))
		return rec
	}

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func(email string) AuthTokens {
		rec := post("/auth/login", LoginDTO{Email: email, Password: "correct_password"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var tokens AuthTokens
		gomega.Expect(json.NewDecoder(rec.Body).Decode(&tokens)).To(gomega.Succeed())
		return tokens
	}

	ginkgo.It("should return 401 for bad credentials", func() {
		rec := post("/auth/login", LoginDTO{Email: "field@example.com", Password: "nope"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(internal.ErrCodeInvalidCredentials)))
	})

	ginkgo.It("should return 400 for a malformed body", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{")))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("should attach the stored user to the request context", func() {
		tokens := login("field@example.com")

		rec := get("/me", tokens.AccessToken)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var user internal.User
		gomega.Expect(json.NewDecoder(rec.Body).Decode(&user)).To(gomega.Succeed())
		gomega.Expect(user.ID).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("should reject requests without a token", func() {
		gomega.Expect(get("/me", "").Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should reject a token whose user no longer exists", func() {
		tokens := login("field@example.com")
		delete(mockRepo.usersByID, 1)

		gomega.Expect(get("/me", tokens.AccessToken).Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should gate admin routes on the admin permission", func() {
		gomega.Expect(get("/admin", login("field@example.com").AccessToken).Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(get("/admin", login("admin@example.com").AccessToken).Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should rotate tokens on refresh", func() {
		tokens := login("field@example.com")

		rec := post("/auth/refresh", RefreshTokenDTO{RefreshToken: tokens.RefreshToken})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		rec = post("/auth/refresh", RefreshTokenDTO{})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("should answer 401 from RBAC when no user is present", func() {
		rbac := service.RBACAuthorization()
		handler := rbac.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
		handler.ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})
})
