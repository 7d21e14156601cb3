package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
	"golang.org/x/time/rate"
)

const (
	defaultYouTubeBaseURL  = "https://www.youtube.com"
	defaultCaptionTimeout  = 30 * time.Second
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"
	translationTarget      = "en"
	maxWatchPageBytes      = 4 << 20
)

var DefaultLanguages = []string{"en", "en-US", "en-GB"}

var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found")
	ErrTooManyRequests     = errors.New("youtube is rate limiting requests from this address")
	errNotTranslatable     = errors.New("track cannot be translated to English")

	apiKeyPattern       = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentValuePattern = regexp.MustCompile(`name="v" value="(.*?)"`)
)

type TrackKind string

const (
	TrackManual    TrackKind = "manual"
	TrackGenerated TrackKind = "generated"
)

type CaptionTrack struct {
	LanguageCode   string    `json:"language_code"`
	Name           string    `json:"name"`
	Kind           TrackKind `json:"kind"`
	IsTranslatable bool      `json:"is_translatable"`
	baseURL        string
}

// TranslationStatus tells the caller whether the returned text is in English
// because the track was English, because translation worked, or not at all.
type TranslationStatus string

const (
	NotTranslated       TranslationStatus = "not_translated"
	Translated          TranslationStatus = "translated"
	TranslatedPartially TranslationStatus = "translated_partially"
)

type CaptionResult struct {
	Text        string
	Track       CaptionTrack
	Translation TranslationStatus
	// TranslationErr explains a TranslatedPartially result.
	TranslationErr error
}

// CaptionStage names the step of a caption lookup that failed.
type CaptionStage string

const (
	// CaptionStageDirect covers listing tracks and fetching a preferred-language track.
	CaptionStageDirect CaptionStage = "direct"
	// CaptionStageFallback covers fetching a non-preferred track after the preference miss.
	CaptionStageFallback CaptionStage = "fallback"
)

type CaptionError struct {
	Stage CaptionStage
	Err   error
}

func (e *CaptionError) Error() string {
	return fmt.Sprintf("captions %s: %v", e.Stage, e.Err)
}

func (e *CaptionError) Unwrap() error {
	return e.Err
}

// PlayabilityError is returned when the player refuses the video.
type PlayabilityError struct {
	Status string
	Reason string
}

func (e *PlayabilityError) Error() string {
	return fmt.Sprintf("video not playable (%s): %s", e.Status, e.Reason)
}

func (e *PlayabilityError) Kind() string {
	reason := strings.ToLower(e.Reason)
	switch {
	case strings.Contains(reason, "not a bot"):
		return "RequestBlocked"
	case strings.Contains(reason, "age"):
		return "AgeRestricted"
	case strings.Contains(reason, "members"):
		return "MembersOnly"
	case e.Status == "ERROR":
		return "VideoUnavailable"
	default:
		return "VideoUnplayable"
	}
}

// TrackList holds every caption track offered for one video.
type TrackList struct {
	VideoID              VideoID
	Manual               []CaptionTrack
	Generated            []CaptionTrack
	TranslationLanguages []string
}

// Find returns the first track matching languages in order, manual before
// generated for the same language.
func (l TrackList) Find(languages []string) (CaptionTrack, bool) {
	for _, lang := range languages {
		for _, group := range [][]CaptionTrack{l.Manual, l.Generated} {
			for _, track := range group {
				if track.LanguageCode == lang {
					return track, true
				}
			}
		}
	}
	return CaptionTrack{}, false
}

// Preferred returns any manual track, else any generated track.
func (l TrackList) Preferred() (CaptionTrack, bool) {
	if len(l.Manual) > 0 {
		return l.Manual[0], true
	}
	if len(l.Generated) > 0 {
		return l.Generated[0], true
	}
	return CaptionTrack{}, false
}

func (l TrackList) canTranslateTo(lang string) bool {
	for _, code := range l.TranslationLanguages {
		if code == lang {
			return true
		}
	}
	return false
}

// CaptionClient reads caption tracks through the watch page and the InnerTube player API.
type CaptionClient struct {
	httpClient *http.Client
	baseURL    string
	languages  []string
	limiter    *rate.Limiter
}

type CaptionOption func(*CaptionClient)

func WithCaptionBaseURL(baseURL string) CaptionOption {
	return func(c *CaptionClient) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
		}
	}
}

func WithCaptionHTTPClient(client *http.Client) CaptionOption {
	return func(c *CaptionClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithCaptionLanguages(languages []string) CaptionOption {
	return func(c *CaptionClient) {
		if len(languages) > 0 {
			c.languages = append([]string(nil), languages...)
		}
	}
}

func WithCaptionLimiter(limiter *rate.Limiter) CaptionOption {
	return func(c *CaptionClient) {
		c.limiter = limiter
	}
}

func NewCaptionClient(opts ...CaptionOption) *CaptionClient {
	c := &CaptionClient{
		httpClient: &http.Client{Timeout: defaultCaptionTimeout},
		baseURL:    defaultYouTubeBaseURL,
		languages:  append([]string(nil), DefaultLanguages...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch returns English caption text for id. Preferred languages are tried
// first; otherwise a manual track beats a generated one and non-English text
// is translated when possible. A failed translation keeps the original text
// and reports TranslatedPartially.
func (c *CaptionClient) Fetch(ctx context.Context, id VideoID) (CaptionResult, error) {
	log := logging.NewLogger(ctx)

	list, err := c.ListTracks(ctx, id)
	if err != nil {
		return CaptionResult{}, &CaptionError{Stage: CaptionStageDirect, Err: err}
	}

	if track, ok := list.Find(c.languages); ok {
		fragments, err := c.FetchTrack(ctx, track, "")
		if err != nil {
			return CaptionResult{}, &CaptionError{Stage: CaptionStageDirect, Err: err}
		}
		text := JoinFragments(fragments)
		if text == "" {
			return CaptionResult{}, utils.WrapIfNotNil(ErrNoTranscriptFound, "empty preferred track")
		}
		log.Infof("captions video_id=%q lang=%q kind=%q chars=%d", id, track.LanguageCode, track.Kind, len(text))
		return CaptionResult{Text: text, Track: track, Translation: NotTranslated}, nil
	}

	track, ok := list.Preferred()
	if !ok {
		return CaptionResult{}, utils.WrapIfNotNil(ErrNoTranscriptFound, "video_id="+id.String())
	}

	result, err := c.fetchWithTranslation(ctx, list, track)
	if err != nil {
		return CaptionResult{}, &CaptionError{Stage: CaptionStageFallback, Err: err}
	}
	if result.Text == "" {
		return CaptionResult{}, utils.WrapIfNotNil(ErrNoTranscriptFound, "empty fallback track")
	}

	log.Infof(
		"captions video_id=%q lang=%q kind=%q translation=%q chars=%d",
		id, track.LanguageCode, track.Kind, result.Translation, len(result.Text),
	)
	return result, nil
}

func (c *CaptionClient) fetchWithTranslation(ctx context.Context, list TrackList, track CaptionTrack) (CaptionResult, error) {
	if strings.HasPrefix(track.LanguageCode, "en") {
		fragments, err := c.FetchTrack(ctx, track, "")
		if err != nil {
			return CaptionResult{}, utils.WrapIfNotNil(err)
		}
		return CaptionResult{Text: JoinFragments(fragments), Track: track, Translation: NotTranslated}, nil
	}

	var translationErr error
	if track.IsTranslatable && list.canTranslateTo(translationTarget) {
		fragments, err := c.FetchTrack(ctx, track, translationTarget)
		if err == nil {
			if text := JoinFragments(fragments); text != "" {
				return CaptionResult{Text: text, Track: track, Translation: Translated}, nil
			}
			err = errors.New("translated track is empty")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return CaptionResult{}, utils.WrapIfNotNil(ctxErr)
		}
		translationErr = err
	} else {
		translationErr = errNotTranslatable
	}

	logging.NewLogger(ctx).Warnf(
		"captions video_id=%q lang=%q translation failed, keeping original text: %v",
		list.VideoID, track.LanguageCode, translationErr,
	)

	fragments, err := c.FetchTrack(ctx, track, "")
	if err != nil {
		return CaptionResult{}, utils.WrapIfNotNil(err)
	}
	return CaptionResult{
		Text:           JoinFragments(fragments),
		Track:          track,
		Translation:    TranslatedPartially,
		TranslationErr: translationErr,
	}, nil
}

// ListTracks fetches the caption track catalogue for id.
func (c *CaptionClient) ListTracks(ctx context.Context, id VideoID) (TrackList, error) {
	apiKey, err := c.fetchAPIKey(ctx, id)
	if err != nil {
		return TrackList{}, utils.WrapIfNotNil(err)
	}

	player, err := c.fetchPlayer(ctx, id, apiKey)
	if err != nil {
		return TrackList{}, utils.WrapIfNotNil(err)
	}

	if status := player.PlayabilityStatus.Status; status != "" && status != "OK" {
		return TrackList{}, utils.WrapIfNotNil(&PlayabilityError{Status: status, Reason: player.PlayabilityStatus.Reason})
	}

	renderer := player.Captions.Renderer
	if renderer == nil || len(renderer.CaptionTracks) == 0 {
		return TrackList{}, utils.WrapIfNotNil(ErrTranscriptsDisabled, "video_id="+id.String())
	}

	list := TrackList{VideoID: id}
	for _, raw := range renderer.CaptionTracks {
		track := CaptionTrack{
			LanguageCode:   raw.LanguageCode,
			Name:           raw.Name.text(),
			IsTranslatable: raw.IsTranslatable,
			baseURL:        strings.Replace(raw.BaseURL, "&fmt=srv3", "", 1),
		}
		if raw.Kind == "asr" {
			track.Kind = TrackGenerated
			list.Generated = append(list.Generated, track)
		} else {
			track.Kind = TrackManual
			list.Manual = append(list.Manual, track)
		}
	}
	for _, lang := range renderer.TranslationLanguages {
		list.TranslationLanguages = append(list.TranslationLanguages, lang.LanguageCode)
	}
	return list, nil
}

// FetchTrack downloads a track's fragments, translated when translateTo is set.
func (c *CaptionClient) FetchTrack(ctx context.Context, track CaptionTrack, translateTo string) ([]Fragment, error) {
	if strings.TrimSpace(track.baseURL) == "" {
		return nil, utils.WrapIfNotNil(errors.New("caption track has no url"))
	}

	trackURL := track.baseURL
	if translateTo != "" {
		trackURL += "&tlang=" + translateTo
	}

	body, err := c.get(ctx, trackURL, "")
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	fragments, err := parseTranscriptXML(body)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return fragments, nil
}

func (c *CaptionClient) fetchAPIKey(ctx context.Context, id VideoID) (string, error) {
	watchURL := c.baseURL + "/watch?v=" + id.String()

	page, err := c.get(ctx, watchURL, "")
	if err != nil {
		return "", utils.WrapIfNotNil(err)
	}

	if bytes.Contains(page, []byte(`action="https://consent.youtube.com/s"`)) {
		match := consentValuePattern.FindSubmatch(page)
		if match == nil {
			return "", utils.WrapIfNotNil(errors.New("consent page without consent value"))
		}
		page, err = c.get(ctx, watchURL, "CONSENT=YES+"+string(match[1]))
		if err != nil {
			return "", utils.WrapIfNotNil(err)
		}
	}

	match := apiKeyPattern.FindSubmatch(page)
	if match == nil {
		if bytes.Contains(page, []byte(`class="g-recaptcha"`)) {
			return "", utils.WrapIfNotNil(ErrTooManyRequests)
		}
		return "", utils.WrapIfNotNil(errors.New("innertube api key not found in watch page"))
	}
	return string(match[1]), nil
}

type playerRequest struct {
	Context playerContext `json:"context"`
	VideoID string        `json:"videoId"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer *captionsRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionsRenderer struct {
	CaptionTracks        []rawCaptionTrack `json:"captionTracks"`
	TranslationLanguages []struct {
		LanguageCode string `json:"languageCode"`
	} `json:"translationLanguages"`
}

type rawCaptionTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           trackName `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"`
	IsTranslatable bool      `json:"isTranslatable"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) text() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	parts := make([]string, 0, len(n.Runs))
	for _, run := range n.Runs {
		parts = append(parts, run.Text)
	}
	return strings.Join(parts, "")
}

func (c *CaptionClient) fetchPlayer(ctx context.Context, id VideoID, apiKey string) (*playerResponse, error) {
	requestBits, err := json.Marshal(playerRequest{
		Context: playerContext{Client: playerClient{
			ClientName:    innertubeClientName,
			ClientVersion: innertubeClientVersion,
		}},
		VideoID: id.String(),
	})
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	if err := c.wait(ctx); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/youtubei/v1/player?key="+apiKey,
		bytes.NewReader(requestBits),
	)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept-Language", "en-US")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxWatchPageBytes))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if err := statusError(response, request); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	player := &playerResponse{}
	if err := json.Unmarshal(body, player); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return player, nil
}

func (c *CaptionClient) get(ctx context.Context, target string, cookie string) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	request.Header.Set("Accept-Language", "en-US")
	request.Header.Set("User-Agent", browserUserAgent)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxWatchPageBytes))
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if err := statusError(response, request); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return body, nil
}

func (c *CaptionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func statusError(response *http.Response, request *http.Request) error {
	if response.StatusCode == http.StatusTooManyRequests {
		return ErrTooManyRequests
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &HTTPStatusError{StatusCode: response.StatusCode, URL: request.URL.Redacted()}
	}
	return nil
}
