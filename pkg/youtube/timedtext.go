package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"golang.org/x/time/rate"
)

const (
	defaultTimedTextBaseURL = "https://video.google.com/timedtext"
	defaultTimedTextTimeout = 30 * time.Second
	browserUserAgent        = "Mozilla/5.0"
	maxCaptionBodyBytes     = 8 << 20
)

// ErrNotFound means no strategy of a client produced caption text.
var ErrNotFound = errors.New("no caption text found")

type timedTextVariant struct {
	Lang string
	ASR  bool
}

// timedTextVariants is the fixed request order: manual tracks before ASR, en before en-US.
var timedTextVariants = []timedTextVariant{
	{Lang: "en"},
	{Lang: "en-US"},
	{Lang: "en", ASR: true},
	{Lang: "en-US", ASR: true},
}

// TimedTextClient reads captions from the legacy unauthenticated timedtext endpoint.
type TimedTextClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

type TimedTextOption func(*TimedTextClient)

func WithTimedTextBaseURL(baseURL string) TimedTextOption {
	return func(c *TimedTextClient) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimSpace(baseURL)
		}
	}
}

func WithTimedTextTimeout(timeout time.Duration) TimedTextOption {
	return func(c *TimedTextClient) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func WithTimedTextHTTPClient(client *http.Client) TimedTextOption {
	return func(c *TimedTextClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimedTextLimiter paces outgoing requests; nil disables pacing.
func WithTimedTextLimiter(limiter *rate.Limiter) TimedTextOption {
	return func(c *TimedTextClient) {
		c.limiter = limiter
	}
}

func NewTimedTextClient(opts ...TimedTextOption) *TimedTextClient {
	c := &TimedTextClient{
		httpClient: &http.Client{Timeout: defaultTimedTextTimeout},
		baseURL:    defaultTimedTextBaseURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch tries each variant once, in order, and returns the first non-blank
// transcript. Per-variant failures are logged and skipped.
func (c *TimedTextClient) Fetch(ctx context.Context, id VideoID) (string, error) {
	log := logging.NewLogger(ctx)

	for _, variant := range timedTextVariants {
		if err := ctx.Err(); err != nil {
			return "", utils.WrapIfNotNil(err)
		}

		text, err := c.fetchVariant(ctx, id, variant)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", utils.WrapIfNotNil(ctxErr)
			}
			log.Debugf("timedtext video_id=%q lang=%q asr=%t skipped: %v", id, variant.Lang, variant.ASR, err)
			continue
		}

		log.Infof("timedtext video_id=%q lang=%q asr=%t chars=%d", id, variant.Lang, variant.ASR, len(text))
		return text, nil
	}

	return "", utils.WrapIfNotNil(ErrNotFound, "video_id="+id.String())
}

func (c *TimedTextClient) variantURL(id VideoID, variant timedTextVariant) string {
	if variant.ASR {
		return fmt.Sprintf("%s?lang=%s&kind=asr&v=%s", c.baseURL, variant.Lang, id)
	}
	return fmt.Sprintf("%s?lang=%s&v=%s", c.baseURL, variant.Lang, id)
}

func (c *TimedTextClient) fetchVariant(ctx context.Context, id VideoID, variant timedTextVariant) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", utils.WrapIfNotNil(err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.variantURL(id, variant), nil)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	request.Header.Set("User-Agent", browserUserAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", utils.WrapIfNotNil(&HTTPStatusError{StatusCode: response.StatusCode, URL: request.URL.String()})
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxCaptionBodyBytes))
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", utils.WrapIfNotNil(errEmptyDocument)
	}

	fragments, err := parseTranscriptXML(body)
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	text := JoinFragments(fragments)
	if text == "" {
		return "", utils.WrapIfNotNil(errors.New("caption document has no text"))
	}
	return text, nil
}

// HTTPStatusError is a non-success response from a YouTube endpoint.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func (e *HTTPStatusError) Kind() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return "TooManyRequests"
	}
	return "HTTPError"
}
