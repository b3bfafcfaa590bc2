package notify

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"agent-orchestrator/internal/common/config"
	"agent-orchestrator/internal/common/logger"
)

// EmailSender is the SES surface the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the SNS surface the notifier needs.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier tells the ops channel about escalated cases over email and SMS.
// Every send is best effort: a channel failure is logged and swallowed so an
// escalation never fails because a notification did.
type Notifier struct {
	email  EmailSender
	sms    SMSSender
	cfg    config.IntegrationConfig
	logger logger.Logger
}

func NewNotifier(email EmailSender, sms SMSSender, cfg config.IntegrationConfig, log logger.Logger) *Notifier {
	return &Notifier{email: email, sms: sms, cfg: cfg, logger: log}
}

// NotifyEscalation fans an escalation event out to the enabled channels.
func (n *Notifier) NotifyEscalation(ctx context.Context, caseID, reason string) error {
	subject := fmt.Sprintf("Case %s escalated", caseID)
	body := fmt.Sprintf("Support case %s was escalated to senior support.\nReason: %s", caseID, reason)

	if n.cfg.AWS.SES.Enabled && n.email != nil {
		n.sendEmail(ctx, caseID, subject, body)
	}
	if n.cfg.AWS.SNS.Enabled && n.sms != nil {
		n.sendSMS(ctx, caseID, subject)
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, caseID, subject, body string) {
	input := &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.AWS.SES.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.AWS.SES.OpsEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	}
	if _, err := n.email.SendEmail(ctx, input); err != nil {
		n.logger.Warn("Escalation email failed", map[string]interface{}{
			"caseId": caseID,
			"error":  err.Error(),
		})
		return
	}
	n.logger.Info("Escalation email sent", map[string]interface{}{
		"caseId": caseID,
		"to":     n.cfg.AWS.SES.OpsEmail,
	})
}

func (n *Notifier) sendSMS(ctx context.Context, caseID, message string) {
	input := &sns.PublishInput{
		PhoneNumber: awssdk.String(n.cfg.AWS.SNS.OpsPhone),
		Message:     awssdk.String(message),
	}
	if n.cfg.AWS.SNS.DefaultSMSSenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(n.cfg.AWS.SNS.DefaultSMSSenderID),
			},
		}
	}
	if _, err := n.sms.Publish(ctx, input); err != nil {
		n.logger.Warn("Escalation SMS failed", map[string]interface{}{
			"caseId": caseID,
			"error":  err.Error(),
		})
		return
	}
	n.logger.Info("Escalation SMS sent", map[string]interface{}{
		"caseId": caseID,
	})
}
