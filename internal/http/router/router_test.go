package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pachca/review-bot/internal/http/middleware"
	"github.com/pachca/review-bot/internal/http/router"
	"github.com/pachca/review-bot/internal/service"
)

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.Logger())
		router.SetupRoutes(engine, service.NewServices(service.ServicesConfig{}))
	})

	It("answers health checks", func() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})

	It("routes GitHub deliveries to the webhook handler", func() {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/github", strings.NewReader(`{"zen":"hi"}`))
		req.Header.Set("X-GitHub-Event", "ping")
		w := httptest.NewRecorder()

		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal(service.BodyNothingToDo))
	})

	It("turns handler panics into 500", func() {
		engine.GET("/boom", func(c *gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
