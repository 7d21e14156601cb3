package model

import "context"

type AudioOptions struct {
	URL       string
	AuthToken string
	Model     string
	// Language pins the spoken language and skips detection when set.
	Language    string
	Temperature *float64
	// VADFilter asks the server to drop non-speech audio before decoding.
	VADFilter bool
}

type AudioSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type AudioTranscript struct {
	Text     string
	Segments []AudioSegment
}

type AudioTranscriptionGenerator interface {
	Generate(ctx context.Context) (AudioTranscript, GenerationMetadata, error)
}
