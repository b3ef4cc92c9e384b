package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/config"
)

const messageTagApp = "leaguekeeper"

// SESClient sends league notifications through SESv2.
type SESClient struct {
	client           *sesv2.Client
	sender           string
	replyTo          string
	configurationSet string
}

// NewSESClient builds a client from static credentials. Region and sender are
// required; reply-to and configuration set are optional.
func NewSESClient(ctx context.Context, cfg config.EmailConfig) (*SESClient, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Region == "" {
		return nil, fmt.Errorf("ses credentials and region are required")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("ses sender is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESClient{
		client:           sesv2.NewFromConfig(awsCfg),
		sender:           cfg.Sender,
		replyTo:          strings.TrimSpace(cfg.ReplyTo),
		configurationSet: strings.TrimSpace(cfg.ConfigurationSet),
	}, nil
}

func (c *SESClient) Send(ctx context.Context, recipient, subject, body string) error {
	return c.SendFrom(ctx, recipient, subject, body, "")
}

// SendFrom delivers a plain-text email, overriding the sender when one is given.
func (c *SESClient) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("ses client is not initialized")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	out, err := c.client.SendEmail(ctx, c.sendInput(recipient, subject, body, sender))
	if err != nil {
		return fmt.Errorf("send ses email to %s: %w", recipient, err)
	}
	log.Ctx(ctx).Debug().
		Str("message_id", aws.ToString(out.MessageId)).
		Str("subject", subject).
		Msg("Email sent")
	return nil
}

func (c *SESClient) sendInput(recipient, subject, body, sender string) *sesv2.SendEmailInput {
	from := strings.TrimSpace(sender)
	if from == "" {
		from = c.sender
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
		FromEmailAddress: aws.String(from),
		EmailTags: []types.MessageTag{
			{Name: aws.String("app"), Value: aws.String(messageTagApp)},
		},
	}
	if c.replyTo != "" {
		input.ReplyToAddresses = []string{c.replyTo}
	}
	if c.configurationSet != "" {
		input.ConfigurationSetName = aws.String(c.configurationSet)
	}
	return input
}
