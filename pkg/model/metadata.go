package model

import (
	"strconv"
	"strings"
	"time"
)

type GenerationMetadata map[string]string

const (
	MetadataKeyProvider       = "provider"
	MetadataKeyModel          = "model"
	MetadataKeyFeature        = "feature"
	MetadataKeyLatencyMs      = "latency_ms"
	MetadataKeyInputTokens    = "input_tokens"
	MetadataKeyOutputTokens   = "output_tokens"
	MetadataKeyTotalTokens    = "total_tokens"
	MetadataKeyResponseID     = "response_id"
	MetadataKeyResponseStatus = "response_status"
)

// NewGenerationMetadata seeds metadata for one provider call.
func NewGenerationMetadata(provider, modelName, feature string) GenerationMetadata {
	if strings.TrimSpace(modelName) == "" {
		modelName = "unknown"
	}
	meta := GenerationMetadata{
		MetadataKeyProvider: provider,
		MetadataKeyModel:    modelName,
	}
	meta.Set(MetadataKeyFeature, feature)
	return meta
}

// Set stores value under key unless value is blank.
func (m GenerationMetadata) Set(key, value string) {
	if m == nil || strings.TrimSpace(value) == "" {
		return
	}
	m[key] = value
}

func (m GenerationMetadata) SetLatency(start time.Time) {
	if m == nil {
		return
	}
	m[MetadataKeyLatencyMs] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
}

func (m GenerationMetadata) SetTokenUsage(input, output, total int64) {
	if m == nil {
		return
	}
	if total == 0 {
		total = input + output
	}
	m[MetadataKeyInputTokens] = strconv.FormatInt(input, 10)
	m[MetadataKeyOutputTokens] = strconv.FormatInt(output, 10)
	m[MetadataKeyTotalTokens] = strconv.FormatInt(total, 10)
}
