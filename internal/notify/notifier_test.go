package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-orchestrator/internal/common/config"
	"agent-orchestrator/internal/common/logger"
)

type fakeEmail struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeEmail) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, f.err
}

type fakeSMS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSMS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, f.err
}

func testIntegrationConfig(sesEnabled, snsEnabled bool) config.IntegrationConfig {
	var cfg config.IntegrationConfig
	cfg.AWS.Region = "us-east-1"
	cfg.AWS.SES.Enabled = sesEnabled
	cfg.AWS.SES.FromEmail = "noreply@bank.example"
	cfg.AWS.SES.OpsEmail = "ops@bank.example"
	cfg.AWS.SNS.Enabled = snsEnabled
	cfg.AWS.SNS.OpsPhone = "+15550100"
	cfg.AWS.SNS.DefaultSMSSenderID = "BANKOPS"
	return cfg
}

func TestNotifyEscalationSendsBothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := NewNotifier(email, sms, testIntegrationConfig(true, true), logger.NewTestLogger(t))

	require.NoError(t, n.NotifyEscalation(context.Background(), "CASE-AB12CD34", "customer called twice"))

	require.Len(t, email.inputs, 1)
	assert.Equal(t, "noreply@bank.example", *email.inputs[0].Source)
	assert.Equal(t, []string{"ops@bank.example"}, email.inputs[0].Destination.ToAddresses)
	assert.Contains(t, *email.inputs[0].Message.Subject.Data, "CASE-AB12CD34")

	require.Len(t, sms.inputs, 1)
	assert.Equal(t, "+15550100", *sms.inputs[0].PhoneNumber)
	assert.Contains(t, sms.inputs[0].MessageAttributes, "AWS.SNS.SMS.SenderID")
}

func TestNotifyEscalationDisabledChannelsSkipped(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := NewNotifier(email, sms, testIntegrationConfig(false, false), logger.NewTestLogger(t))

	require.NoError(t, n.NotifyEscalation(context.Background(), "CASE-AB12CD34", "stale"))
	assert.Empty(t, email.inputs)
	assert.Empty(t, sms.inputs)
}

func TestNotifyEscalationSwallowsSendFailures(t *testing.T) {
	email := &fakeEmail{err: assert.AnError}
	sms := &fakeSMS{err: assert.AnError}
	n := NewNotifier(email, sms, testIntegrationConfig(true, true), logger.NewTestLogger(t))

	assert.NoError(t, n.NotifyEscalation(context.Background(), "CASE-AB12CD34", "stale"))
}

func TestNotifyEscalationNilClients(t *testing.T) {
	n := NewNotifier(nil, nil, testIntegrationConfig(true, true), logger.NewTestLogger(t))
	assert.NoError(t, n.NotifyEscalation(context.Background(), "CASE-AB12CD34", "stale"))
}
