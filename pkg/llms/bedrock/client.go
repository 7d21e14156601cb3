package bedrock

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/model"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	defaultModelName = "us.anthropic.claude-3-5-sonnet-20241022-v2:0"
	providerName     = "bedrock"
	defaultRegion    = "us-east-1"
)

var errMissingCredentials = errors.New("missing AWS credentials: set AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY or AWS_PROFILE")

// envLookup reads AWS settings; tests substitute a map.
type envLookup func(key string) string

func newClient(ctx context.Context, cfg model.GeneratorConfig, env envLookup) (*bedrockruntime.Client, error) {
	awsCfg, err := loadAWSConfig(ctx, env)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	return bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if endpoint := strings.TrimSpace(cfg.URL); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// loadAWSConfig prefers static keys, then a named profile. Ambient
// credentials are not searched so a missing setup fails fast.
func loadAWSConfig(ctx context.Context, env envLookup) (aws.Config, error) {
	if env == nil {
		env = os.Getenv
	}
	get := func(key string) string { return strings.TrimSpace(env(key)) }

	region := get("AWS_REGION")
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	accessKeyID, secretAccessKey := get("AWS_ACCESS_KEY_ID"), get("AWS_SECRET_ACCESS_KEY")
	switch {
	case accessKeyID != "" || secretAccessKey != "":
		if accessKeyID == "" || secretAccessKey == "" {
			return aws.Config{}, utils.WrapIfNotNil(
				errors.New("both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required when using key-based auth"),
			)
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, get("AWS_SESSION_TOKEN")),
		))
	case get("AWS_PROFILE") != "":
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(get("AWS_PROFILE")))
	default:
		return aws.Config{}, utils.WrapIfNotNil(errMissingCredentials)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, utils.WrapIfNotNil(err)
	}
	return awsCfg, nil
}

func applyConverseMetadata(meta model.GenerationMetadata, output *bedrockruntime.ConverseOutput) {
	if output == nil {
		return
	}
	if usage := output.Usage; usage != nil {
		meta.SetTokenUsage(
			int64(aws.ToInt32(usage.InputTokens)),
			int64(aws.ToInt32(usage.OutputTokens)),
			int64(aws.ToInt32(usage.TotalTokens)),
		)
	}
	meta.Set(model.MetadataKeyResponseStatus, string(output.StopReason))
}
