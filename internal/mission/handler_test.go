package mission_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/mission"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MissionHandler", func() {
	var router chi.Router

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		h := mission.NewHandler(transport.NewBaseHandler(logger), mission.NewService(newMockMissionRepository(), logger))
		router = chi.NewRouter()
		router.Get("/missions", h.ListMissions)
		router.Post("/missions", h.StartMission)
		router.Get("/missions/active", h.GetActiveMission)
		router.Patch("/missions/{id}/complete", h.CompleteMission)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req = req.WithContext(internal.ContextWithUser(req.Context(), &internal.User{ID: 1}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("walks a mission through its lifecycle", func() {
		Expect(do(http.MethodGet, "/missions/active", nil).Code).To(Equal(http.StatusBadRequest))

		rec := do(http.MethodPost, "/missions", mission.StartMissionDTO{Name: "Audit"})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var started mission.MissionResponse
		Expect(json.NewDecoder(rec.Body).Decode(&started)).To(Succeed())

		Expect(do(http.MethodPost, "/missions", mission.StartMissionDTO{Name: "Again"}).Code).To(Equal(http.StatusConflict))
		Expect(do(http.MethodGet, "/missions/active", nil).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodPatch, "/missions/nope/complete", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodPatch, "/missions/"+started.ID+"/complete", nil).Code).To(Equal(http.StatusOK))

		rec = do(http.MethodGet, "/missions", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var list mission.MissionsResponse
		Expect(json.NewDecoder(rec.Body).Decode(&list)).To(Succeed())
		Expect(list.Missions).To(HaveLen(1))
		Expect(list.Missions[0].Status).To(Equal(mission.StatusCompleted))
		Expect(list.Missions[0].EndDate).NotTo(BeNil())
	})
})
