package bedrock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/stretchr/testify/suite"
)

type ContentSuite struct {
	suite.Suite
}

func TestContentSuite(t *testing.T) {
	suite.Run(t, new(ContentSuite))
}

func newTestGenerator(prompt string, opts ...model.GeneratorOption) *textGenerator {
	return &textGenerator{prompt: prompt, cfg: model.ResolveGeneratorOpts(opts...)}
}

func (s *ContentSuite) TestConverseInputSplitsSystem() {
	generator := newTestGenerator("prompt")
	ctx := context.Background()
	generator.AddPromptContext(ctx, model.ContextMessageTypeSystem, "be kind")
	generator.AddPromptContext(ctx, model.ContextMessageType("note"), "notes")
	generator.AddPromptContext(ctx, model.ContextMessageTypeAssistant, "ok")
	generator.AddPromptContext(ctx, model.ContextMessageTypeSystem, " ")

	input := generator.converseInput("model-id")

	s.Equal("model-id", aws.ToString(input.ModelId))
	s.Require().Len(input.System, 1)
	s.Equal("be kind", input.System[0].(*bedrocktypes.SystemContentBlockMemberText).Value)
	s.Require().Len(input.Messages, 3)
	s.Equal(bedrocktypes.ConversationRoleUser, input.Messages[0].Role)
	s.Equal(bedrocktypes.ConversationRoleAssistant, input.Messages[1].Role)
	s.Equal("prompt", extractTextFromMessage(input.Messages[2]))
	s.Nil(input.InferenceConfig)
}

func (s *ContentSuite) TestJSONModeAppendsInstruction() {
	input := newTestGenerator("make a quiz", model.WithJSONMode(true)).converseInput(defaultModelName)

	last := input.Messages[len(input.Messages)-1]
	s.Equal("make a quiz\n\n"+model.JSONModeInstruction, extractTextFromMessage(last))
}

func (s *ContentSuite) TestBuildInferenceConfig() {
	s.Nil(buildInferenceConfig(model.GeneratorConfig{}))

	inference := buildInferenceConfig(model.ResolveGeneratorOpts(model.WithMaxTokens(100), model.WithTemperature(0.25)))
	s.Require().NotNil(inference)
	s.Equal(int32(100), *inference.MaxTokens)
	s.InDelta(0.25, float64(*inference.Temperature), 1e-6)
}

func (s *ContentSuite) TestExtractOutputMessage() {
	_, err := extractOutputMessage(nil)
	s.Error(err)

	message, err := extractOutputMessage(&bedrocktypes.ConverseOutputMemberMessage{
		Value: bedrocktypes.Message{
			Role: bedrocktypes.ConversationRoleAssistant,
			Content: []bedrocktypes.ContentBlock{
				&bedrocktypes.ContentBlockMemberText{Value: " first "},
				&bedrocktypes.ContentBlockMemberText{Value: ""},
				&bedrocktypes.ContentBlockMemberText{Value: "second"},
			},
		},
	})
	s.Require().NoError(err)
	s.Equal("first\nsecond", extractTextFromMessage(message))
}

func (s *ContentSuite) TestApplyMetadata() {
	meta := model.NewGenerationMetadata(providerName, "", "qna")
	applyConverseMetadata(meta, &bedrockruntime.ConverseOutput{
		StopReason: bedrocktypes.StopReasonEndTurn,
		Usage: &bedrocktypes.TokenUsage{
			InputTokens:  aws.Int32(12),
			OutputTokens: aws.Int32(8),
			TotalTokens:  aws.Int32(20),
		},
	})
	s.Equal("unknown", meta[model.MetadataKeyModel])
	s.Equal("20", meta[model.MetadataKeyTotalTokens])
	s.Equal("end_turn", meta[model.MetadataKeyResponseStatus])
}

func (s *ContentSuite) TestCredentialResolution() {
	env := func(values map[string]string) envLookup {
		return func(key string) string { return values[key] }
	}

	_, err := loadAWSConfig(context.Background(), env(nil))
	s.Require().ErrorIs(err, errMissingCredentials)

	_, err = loadAWSConfig(context.Background(), env(map[string]string{"AWS_ACCESS_KEY_ID": "AKIA"}))
	s.Require().Error(err)
	s.Contains(err.Error(), "both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")

	awsCfg, err := loadAWSConfig(context.Background(), env(map[string]string{
		"AWS_ACCESS_KEY_ID":     "AKIA",
		"AWS_SECRET_ACCESS_KEY": "secret",
		"AWS_REGION":            "eu-west-1",
	}))
	s.Require().NoError(err)
	s.Equal("eu-west-1", awsCfg.Region)
}

func (s *ContentSuite) TestGenerateWithoutCredentialsFails() {
	generator := newTestGenerator("hi", model.WithFeature("coding"))
	generator.env = func(string) string { return "" }

	_, meta, err := generator.Generate(context.Background())
	s.Require().ErrorIs(err, errMissingCredentials)
	s.Equal("coding", meta[model.MetadataKeyFeature])
	s.Contains(meta, model.MetadataKeyLatencyMs)
}
