package api

import (
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/preview"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PaperSummary is the list view of a paper.
type PaperSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	Source        string    `json:"source,omitempty"`
}

// ListResponse is returned by GET /v1/papers.
type ListResponse struct {
	Count  int            `json:"count"`
	Papers []PaperSummary `json:"papers"`
}

func summarize(p *paper.Paper) PaperSummary {
	return PaperSummary{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Tags:          p.Tags,
		QuestionCount: len(p.Questions),
		CreatedAt:     p.CreatedAt,
		Source:        p.Source,
	}
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListPapers returns stored papers newest first. The optional "tag"
// query keeps papers carrying that tag and "limit" caps the result.
func (s *Server) handleListPapers(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}
	tag := c.Query("tag")

	papers, err := s.driver.List(c.Context())
	if err != nil {
		s.logger.Error("failed to list papers", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list papers"})
	}

	summaries := make([]PaperSummary, 0, len(papers))
	for _, p := range papers {
		if tag != "" && !slices.Contains(p.Tags, tag) {
			continue
		}
		summaries = append(summaries, summarize(p))
		if limit > 0 && len(summaries) == limit {
			break
		}
	}

	return c.JSON(ListResponse{
		Count:  len(summaries),
		Papers: summaries,
	})
}

// handleGetPaper returns a full paper by ID.
func (s *Server) handleGetPaper(c *fiber.Ctx) error {
	p, status, err := s.lookup(c)
	if err != nil {
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(p)
}

// handlePreviewPaper returns the paper as the same plain text the
// generation preview shows.
func (s *Server) handlePreviewPaper(c *fiber.Ctx) error {
	p, status, err := s.lookup(c)
	if err != nil {
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(preview.Format(preview.FromPaper(p)))
}

func (s *Server) lookup(c *fiber.Ctx) (*paper.Paper, int, error) {
	id := c.Params("id")
	if id == "" {
		return nil, fiber.StatusBadRequest, errors.New("id parameter required")
	}

	p, err := s.driver.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fiber.StatusNotFound, errors.New("paper not found")
		}
		s.logger.Error("failed to get paper", "paper_id", id, "error", err)
		return nil, fiber.StatusInternalServerError, errors.New("failed to get paper")
	}
	return p, fiber.StatusOK, nil
}
