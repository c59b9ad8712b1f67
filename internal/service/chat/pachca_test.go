package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pachca/review-bot/internal/model"
	"github.com/pachca/review-bot/internal/service/chat"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

var _ = Describe("PachcaService", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		requests []recordedRequest
		respond  func(w http.ResponseWriter, r *http.Request)
		svc      chat.ChatService
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil
		respond = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data":{"id":555,"thread":null}}`)
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
			if data, _ := io.ReadAll(r.Body); len(data) > 0 {
				_ = json.Unmarshal(data, &rec.Body)
			}
			requests = append(requests, rec)
			respond(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		svc, err = chat.NewPachcaService(chat.PachcaConfig{
			AccessToken: "token",
			ChatID:      "42",
			APIURL:      server.URL + "/api/shared/v1/",
			AppURL:      "https://app.pachca.com/",
			HTTPClient:  server.Client(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a token and a chat", func() {
		_, err := chat.NewPachcaService(chat.PachcaConfig{ChatID: "42"})
		Expect(err).To(HaveOccurred())

		_, err = chat.NewPachcaService(chat.PachcaConfig{AccessToken: "token"})
		Expect(err).To(HaveOccurred())
	})

	It("posts discussion messages into the configured chat", func() {
		msg, err := svc.CreateMessage(ctx, "hello")

		Expect(err).NotTo(HaveOccurred())
		Expect(msg).To(Equal(&model.ChatMessage{ID: "555"}))
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Method).To(Equal(http.MethodPost))
		Expect(requests[0].Path).To(Equal("/api/shared/v1/messages"))
		Expect(requests[0].Auth).To(Equal("Bearer token"))
		Expect(requests[0].Body).To(Equal(map[string]any{
			"message": map[string]any{"entity_type": "discussion", "entity_id": float64(42), "content": "hello"},
		}))
	})

	It("replaces content and attachments on update", func() {
		respond = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data":{"id":555,"thread":{"id":900,"chat_id":42}}}`)
		}

		msg, err := svc.UpdateMessage(ctx, "555", "status")

		Expect(err).NotTo(HaveOccurred())
		Expect(msg).To(Equal(&model.ChatMessage{ID: "555", ThreadID: "900"}))
		Expect(requests[0].Method).To(Equal(http.MethodPut))
		Expect(requests[0].Path).To(Equal("/api/shared/v1/messages/555"))
		Expect(requests[0].Body).To(Equal(map[string]any{
			"message": map[string]any{"content": "status", "files": []any{}},
		}))
	})

	It("creates threads under a message", func() {
		respond = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data":{"id":900,"chat_id":77}}`)
		}

		thread, err := svc.CreateThread(ctx, "555")

		Expect(err).NotTo(HaveOccurred())
		Expect(thread).To(Equal(&model.Thread{ID: "900", ChatID: "77"}))
		Expect(requests[0].Path).To(Equal("/api/shared/v1/messages/555/thread"))
		Expect(requests[0].Body).To(BeNil())
	})

	It("sends thread messages to the thread entity", func() {
		_, err := svc.SendThreadMessage(ctx, "900", "👏 @alice approved")

		Expect(err).NotTo(HaveOccurred())
		Expect(requests[0].Body["message"]).To(HaveKeyWithValue("entity_type", "thread"))
		Expect(requests[0].Body["message"]).To(HaveKeyWithValue("entity_id", float64(900)))
	})

	It("rejects non-numeric entity ids before calling the API", func() {
		_, err := svc.SendThreadMessage(ctx, "abc", "text")

		Expect(err).To(HaveOccurred())
		Expect(requests).To(BeEmpty())
	})

	It("keeps the status of failed requests", func() {
		respond = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"errors":[{"key":"content","value":"","message":"can't be blank"}]}`)
		}

		_, err := svc.CreateMessage(ctx, "")

		var httpErr *model.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusUnprocessableEntity))
		Expect(httpErr.Status).To(Equal("Unprocessable Entity"))
		Expect(httpErr.Message).To(Equal("content: can't be blank"))
	})

	It("links to the chat in the web app", func() {
		Expect(svc.MessageLink()).To(Equal("https://app.pachca.com/chats/42"))
	})
})
