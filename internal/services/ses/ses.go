// Package ses sends failed-load alerts via AWS SES
package ses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"redshift-sales-loader/internal/config"
	"redshift-sales-loader/internal/models"
	"redshift-sales-loader/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	TextBody string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg.SESSenderEmail == "" {
		return nil, fmt.Errorf("SES_SENDER_EMAIL is not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: cfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a plain-text email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(params.TextBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.GetLogger().Info("Email sent",
		zap.String("to", params.To),
		zap.String("messageID", aws.ToString(output.MessageId)))

	return &SendEmailResult{
		MessageID: aws.ToString(output.MessageId),
		SentAt:    time.Now().UTC(),
	}, nil
}

// SendLoadFailure emails to with the details of a failed load.
func (s *Service) SendLoadFailure(ctx context.Context, to string, n models.Notification, loadErr *models.LoadError) error {
	subject, body := FormatLoadFailure(n, loadErr)
	_, err := s.SendEmail(ctx, EmailParams{
		To:       to,
		Subject:  subject,
		TextBody: body,
	})
	return err
}

// FormatLoadFailure renders the subject and body of a failure alert.
func FormatLoadFailure(n models.Notification, loadErr *models.LoadError) (string, string) {
	object := n.Locator()
	if n.Bucket == "" {
		object = "(unknown object)"
	}

	subject := fmt.Sprintf("[redshift-sales-loader] %s failure loading %s", loadErr.Kind, object)

	var b strings.Builder
	fmt.Fprintf(&b, "Object: %s\n", object)
	fmt.Fprintf(&b, "Kind:   %s\n", loadErr.Kind)
	fmt.Fprintf(&b, "Error:  %s\n", loadErr.Error())
	b.WriteString("\nThe destination table was not changed.\n")

	return subject, b.String()
}
