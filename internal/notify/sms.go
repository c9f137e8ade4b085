package notify

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"rollcall/internal/platform/config"
)

// SNSSender sends SMS messages via AWS SNS.
type SNSSender struct {
	client *sns.Client
}

func NewSNSSender(ctx context.Context, cfg config.SNSConfig) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSSender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *SNSSender) Send(ctx context.Context, to, body string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &body,
	})
	if err != nil {
		return fmt.Errorf("publish sms: %w", err)
	}
	return nil
}
