package interview

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

// QuestionBank serves the read-only question set grouped by category.
type QuestionBank interface {
	Fetch(ctx context.Context) (map[string][]domain.InterviewQuestion, error)
}

//go:embed questions.json
var defaultBank []byte

// EmbeddedBank serves the question set compiled into the binary.
type EmbeddedBank struct{}

func (EmbeddedBank) Fetch(ctx context.Context) (map[string][]domain.InterviewQuestion, error) {
	return decodeBank(defaultBank)
}

// HTTPBank fetches the question set from a URL on every call.
type HTTPBank struct {
	url        string
	httpClient *http.Client
}

// NewHTTPBank creates a bank reading from url.
func NewHTTPBank(url string, timeout time.Duration) *HTTPBank {
	return &HTTPBank{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBank) Fetch(ctx context.Context) (map[string][]domain.InterviewQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: question bank returned status %d", domain.ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", domain.ErrFetch, err)
	}
	return decodeBank(body)
}

// decodeBank parses a category -> questions object and fills in each
// question's category from its group.
func decodeBank(data []byte) (map[string][]domain.InterviewQuestion, error) {
	var bank map[string][]domain.InterviewQuestion
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("%w: invalid question bank: %v", domain.ErrFetch, err)
	}
	for category, questions := range bank {
		for i := range questions {
			if questions[i].Category == "" {
				questions[i].Category = category
			}
		}
	}
	return bank, nil
}
