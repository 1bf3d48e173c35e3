package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/quizpaper/pkg/utils/test"
)

var _ = Describe("Server", func() {
	var (
		server *Server
		driver *inmemory.Driver
		mock   *testutils.MockDriver
		ctx    context.Context
		base   time.Time
	)

	get := func(s *Server, path string) (*http.Response, []byte) {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, body
	}

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
		driver = inmemory.NewDriver()
		server = NewServer(Config{ListenAddr: ":0"}, driver, nil)

		older := testutils.NewTestPaper("older", base)
		newer := testutils.NewTestPaper("newer", base.Add(time.Hour))
		newer.Tags = []string{"food"}
		for _, p := range []*paper.Paper{older, newer} {
			_, err := driver.Put(ctx, p)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	Describe("GET /ping", func() {
		It("answers pong", func() {
			resp, body := get(server, "/ping")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("GET /v1/papers", func() {
		It("lists summaries newest first", func() {
			resp, body := get(server, "/v1/papers")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Count).To(Equal(2))
			Expect(list.Papers[0].ID).To(Equal("newer"))
			Expect(list.Papers[1].ID).To(Equal("older"))
			Expect(list.Papers[1].QuestionCount).To(Equal(2))
			Expect(list.Papers[1].CreatedAt.Equal(base)).To(BeTrue())
		})

		It("filters by tag", func() {
			_, body := get(server, "/v1/papers?tag=travel")

			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Count).To(Equal(1))
			Expect(list.Papers[0].ID).To(Equal("older"))
		})

		It("applies the limit", func() {
			_, body := get(server, "/v1/papers?limit=1")

			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Papers).To(HaveLen(1))
			Expect(list.Papers[0].ID).To(Equal("newer"))
		})

		It("rejects a malformed limit", func() {
			resp, _ := get(server, "/v1/papers?limit=lots")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns an empty list for an empty store", func() {
			s := NewServer(Config{}, inmemory.NewDriver(), nil)
			_, body := get(s, "/v1/papers")
			Expect(string(body)).To(MatchJSON(`{"count":0,"papers":[]}`))
		})
	})

	Describe("GET /v1/papers/:id", func() {
		It("returns the full paper", func() {
			resp, body := get(server, "/v1/papers/older")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var p paper.Paper
			Expect(json.Unmarshal(body, &p)).To(Succeed())
			Expect(p.ID).To(Equal("older"))
			Expect(p.Questions).To(HaveLen(2))
			Expect(p.Questions[0].Answer).To(Equal("hotel"))
		})

		It("returns 404 for an unknown paper", func() {
			resp, body := get(server, "/v1/papers/missing")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(string(body)).To(MatchJSON(`{"error":"paper not found"}`))
		})

		It("returns 500 when storage fails", func() {
			mock = testutils.NewMockDriver()
			mock.FailGet = true
			s := NewServer(Config{}, mock, nil)

			resp, _ := get(s, "/v1/papers/older")
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GET /v1/papers/:id/preview", func() {
		It("renders the preview text", func() {
			resp, body := get(server, "/v1/papers/older/preview")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/plain"))
			Expect(string(body)).To(HavePrefix("📝 Paper older\nTravel vocabulary\n\n1. We checked in at the h____.\n"))
		})
	})
})
