package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	appConfig "github.com/shahzaib-autos/shahzaib-autos-api/config"
	"go.uber.org/zap"
)

// EmailMessage is a plain-text transactional email
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// EmailService delivers transactional email
type EmailService interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SESEmailService sends through Amazon SES v2
type SESEmailService struct {
	client *sesv2.Client
	from   string
}

// LogEmailService writes messages to the log instead of sending them. Used when MAIL_FROM is unset.
type LogEmailService struct{}

var emailServiceInstance EmailService

// InitEmailService sets up SES when MAIL_FROM is configured and the log mailer otherwise
func InitEmailService(ctx context.Context, cfg *appConfig.Config) (EmailService, error) {
	if cfg.MailFrom == "" {
		emailServiceInstance = LogEmailService{}
		return emailServiceInstance, nil
	}

	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	emailServiceInstance = &SESEmailService{
		client: sesv2.NewFromConfig(awsConfig),
		from:   cfg.MailFrom,
	}
	return emailServiceInstance, nil
}

// GetEmailService returns the email instance, or the log mailer when none was initialized
func GetEmailService() EmailService {
	if emailServiceInstance == nil {
		return LogEmailService{}
	}
	return emailServiceInstance
}

// SetEmailService sets the email instance (primarily for testing)
func SetEmailService(service EmailService) {
	emailServiceInstance = service
}

func validateEmail(msg EmailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}
	if msg.Subject == "" {
		return errors.New("email has no subject")
	}
	return nil
}

// Send delivers msg as a simple UTF-8 text email
func (s *SESEmailService) Send(ctx context.Context, msg EmailMessage) error {
	if err := validateEmail(msg); err != nil {
		return err
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (LogEmailService) Send(ctx context.Context, msg EmailMessage) error {
	if err := validateEmail(msg); err != nil {
		return err
	}
	zap.L().Info("email (not sent, MAIL_FROM unset)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
