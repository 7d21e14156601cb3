package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type fakeTrack struct {
	lang          string
	asr           bool
	translatable  bool
	body          string
	translated    string
	failTranslate bool
}

type fakeYouTube struct {
	apiKey        string
	consent       bool
	playability   string
	reason        string
	noCaptions    bool
	tracks        []fakeTrack
	translations  []string
	trackRequests []string
}

func (f *fakeYouTube) handler(baseURL func() string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if f.consent && !strings.Contains(r.Header.Get("Cookie"), "CONSENT=YES+cb123") {
			_, _ = w.Write([]byte(`<form action="https://consent.youtube.com/s"><input name="v" value="cb123"></form>`))
			return
		}
		if f.apiKey == "" {
			_, _ = w.Write([]byte(`<div class="g-recaptcha"></div>`))
			return
		}
		_, _ = fmt.Fprintf(w, `<script>ytcfg.set({"INNERTUBE_API_KEY": "%s"})</script>`, f.apiKey)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("key") != f.apiKey {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		request := playerRequest{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Context.Client.ClientName != "ANDROID" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		status := f.playability
		if status == "" {
			status = "OK"
		}
		body := map[string]any{"playabilityStatus": map[string]any{"status": status, "reason": f.reason}}
		if !f.noCaptions {
			tracks := make([]map[string]any, 0, len(f.tracks))
			for i, track := range f.tracks {
				raw := map[string]any{
					"baseUrl":        fmt.Sprintf("%s/api/timedtext?track=%d&fmt=srv3", baseURL(), i),
					"name":           map[string]any{"runs": []map[string]any{{"text": track.lang}}},
					"languageCode":   track.lang,
					"isTranslatable": track.translatable,
				}
				if track.asr {
					raw["kind"] = "asr"
				}
				tracks = append(tracks, raw)
			}
			languages := make([]map[string]any, 0, len(f.translations))
			for _, code := range f.translations {
				languages = append(languages, map[string]any{"languageCode": code})
			}
			body["captions"] = map[string]any{"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks":        tracks,
				"translationLanguages": languages,
			}}
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		f.trackRequests = append(f.trackRequests, r.URL.RawQuery)
		var index int
		_, _ = fmt.Sscanf(r.URL.Query().Get("track"), "%d", &index)
		track := f.tracks[index]
		if r.URL.Query().Get("tlang") != "" {
			if track.failTranslate {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(track.translated))
			return
		}
		_, _ = w.Write([]byte(track.body))
	})
	return mux
}

type CaptionClientSuite struct {
	suite.Suite
	fake   *fakeYouTube
	client *CaptionClient
}

func TestCaptionClientSuite(t *testing.T) {
	suite.Run(t, new(CaptionClientSuite))
}

func (s *CaptionClientSuite) SetupTest() {
	s.fake = &fakeYouTube{apiKey: "test-key"}
	var server *httptest.Server
	server = httptest.NewServer(s.fake.handler(func() string { return server.URL }))
	s.T().Cleanup(server.Close)
	s.client = NewCaptionClient(WithCaptionBaseURL(server.URL))
}

func transcriptXML(parts ...string) string {
	var builder strings.Builder
	builder.WriteString("<transcript>")
	for i, part := range parts {
		fmt.Fprintf(&builder, `<text start="%d" dur="1">%s</text>`, i, part)
	}
	builder.WriteString("</transcript>")
	return builder.String()
}

func (s *CaptionClientSuite) TestPreferredEnglishTrack() {
	s.fake.tracks = []fakeTrack{{lang: "en", body: transcriptXML("Hello", "world.")}}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("Hello world.", result.Text)
	s.Equal(NotTranslated, result.Translation)
	s.Equal(TrackManual, result.Track.Kind)
	s.Equal([]string{"track=0"}, s.fake.trackRequests)
}

func (s *CaptionClientSuite) TestManualBeatsGeneratedForSameLanguage() {
	s.fake.tracks = []fakeTrack{
		{lang: "en", asr: true, body: transcriptXML("generated")},
		{lang: "en", body: transcriptXML("manual")},
	}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("manual", result.Text)
}

func (s *CaptionClientSuite) TestLanguagePreferenceOrder() {
	s.fake.tracks = []fakeTrack{
		{lang: "en-GB", body: transcriptXML("british")},
		{lang: "en-US", asr: true, body: transcriptXML("american")},
	}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("american", result.Text)
	s.Equal(TrackGenerated, result.Track.Kind)
}

func (s *CaptionClientSuite) TestTranslatesNonEnglishTrack() {
	s.fake.translations = []string{"en", "fr"}
	s.fake.tracks = []fakeTrack{
		{lang: "de", asr: true, translatable: true, body: transcriptXML("automatisch")},
		{lang: "fr", translatable: true, body: transcriptXML("Bonjour"), translated: transcriptXML("Hello")},
	}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("Hello", result.Text)
	s.Equal(Translated, result.Translation)
	s.Equal("fr", result.Track.LanguageCode)
	s.Equal([]string{"track=1&tlang=en"}, s.fake.trackRequests)
}

func (s *CaptionClientSuite) TestTranslationFailureKeepsOriginal() {
	s.fake.translations = []string{"en"}
	s.fake.tracks = []fakeTrack{{lang: "es", translatable: true, body: transcriptXML("Hola", "mundo"), failTranslate: true}}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("Hola mundo", result.Text)
	s.Equal(TranslatedPartially, result.Translation)
	s.Error(result.TranslationErr)
}

func (s *CaptionClientSuite) TestUntranslatableTrackKeepsOriginal() {
	s.fake.tracks = []fakeTrack{{lang: "ja", body: transcriptXML("こんにちは")}}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("こんにちは", result.Text)
	s.Equal(TranslatedPartially, result.Translation)
	s.ErrorIs(result.TranslationErr, errNotTranslatable)
}

func (s *CaptionClientSuite) TestCaptionsDisabled() {
	s.fake.noCaptions = true

	_, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().Error(err)
	s.True(errors.Is(err, ErrTranscriptsDisabled))
	captionErr := &CaptionError{}
	s.Require().True(errors.As(err, &captionErr))
	s.Equal(CaptionStageDirect, captionErr.Stage)
}

func (s *CaptionClientSuite) TestPlayabilityError() {
	s.fake.playability = "LOGIN_REQUIRED"
	s.fake.reason = "Sign in to confirm your age"

	_, err := s.client.Fetch(context.Background(), "abcdefghijk")

	playErr := &PlayabilityError{}
	s.Require().True(errors.As(err, &playErr))
	s.Equal("AgeRestricted", playErr.Kind())
}

func (s *CaptionClientSuite) TestRecaptchaMeansTooManyRequests() {
	s.fake.apiKey = ""

	_, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.True(errors.Is(err, ErrTooManyRequests))
}

func (s *CaptionClientSuite) TestConsentPageIsAccepted() {
	s.fake.consent = true
	s.fake.tracks = []fakeTrack{{lang: "en", body: transcriptXML("after consent")}}

	result, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Equal("after consent", result.Text)
}

func (s *CaptionClientSuite) TestEmptyTrackIsNotFound() {
	s.fake.tracks = []fakeTrack{{lang: "en", body: transcriptXML(" ")}}

	_, err := s.client.Fetch(context.Background(), "abcdefghijk")

	s.True(errors.Is(err, ErrNoTranscriptFound))
}

func (s *CaptionClientSuite) TestListTracksSplitsKinds() {
	s.fake.translations = []string{"en"}
	s.fake.tracks = []fakeTrack{
		{lang: "en", asr: true},
		{lang: "fr"},
	}

	list, err := s.client.ListTracks(context.Background(), "abcdefghijk")

	s.Require().NoError(err)
	s.Len(list.Manual, 1)
	s.Len(list.Generated, 1)
	s.Equal("fr", list.Manual[0].Name)
	s.NotContains(list.Manual[0].baseURL, "fmt=srv3")
	s.Equal([]string{"en"}, list.TranslationLanguages)
}
