package sns

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-retail-api/internal/config"
)

// SMSSender delivers one-time codes over SMS. Used as a co-delivery channel
// when the registration payload carries a phone number; failures are logged
// by the caller, never fatal.
type SMSSender interface {
	SendOTPSMS(ctx context.Context, to, code string) error
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendOTPSMS(ctx context.Context, to, code string) error {
	message := fmt.Sprintf("Your verification code is %s", code)
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}
