package sendsubmissionconfirmation

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awsclient "mobility-portal/internal/common/aws"
	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
)

type fakeSender struct {
	to, subject, text string
	err               error
	calls             int
}

func (f *fakeSender) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	f.calls++
	f.to, f.subject, f.text = to, subject, text
	if f.err != nil {
		return "", f.err
	}
	return "email-1", nil
}

type fakePublisher struct {
	message string
	attrs   map[string]string
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error) {
	f.message, f.attrs = message, attrs
	if f.err != nil {
		return "", f.err
	}
	return "sns-1", nil
}

type sesStub struct {
	input *ses.SendEmailInput
}

func (s *sesStub) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.input = in
	return &ses.SendEmailOutput{MessageId: sdkaws.String("ses-42")}, nil
}

func createTestInput() *Input {
	return &Input{
		DatabaseID:  "0190a0b4-7c1e-7000-8000-000000000001",
		Email:       "john.doe@centrale-casablanca.ma",
		FirstName:   "John",
		LastName:    "Doe",
		Nationality: "moroccan",
		School1:     "s9_ensimag",
		School2:     "unset",
		CreatedAt:   "2025-03-01T10:00:00Z",
	}
}

func createTestHandler(t *testing.T, cfg *Config, s Sender, p Publisher) *Handler {
	h := NewHandler(cfg, s, p, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 1, 0, time.UTC) }
	return h
}

func TestHandler_Execute_BothChannels(t *testing.T) {
	sender := &fakeSender{}
	publisher := &fakePublisher{}
	h := createTestHandler(t, &Config{EmailEnabled: true, StaffEnabled: true}, sender, publisher)

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, "email-1", output.EmailMessageID)
	assert.Equal(t, "sns-1", output.StaffMessageID)
	assert.Equal(t, "2025-03-01T10:00:01Z", output.SentAt)
	assert.NotEmpty(t, output.NotificationID)

	assert.Equal(t, "john.doe@centrale-casablanca.ma", sender.to)
	assert.Contains(t, sender.subject, "ENSIMAG")
	assert.Contains(t, sender.text, "Hello John Doe")
	assert.NotContains(t, sender.text, "Second choice")

	assert.Contains(t, publisher.message, "<john.doe@centrale-casablanca.ma>")
	assert.Equal(t, "s9_ensimag", publisher.attrs["school1"])
}

func TestHandler_Execute_SecondChoiceRendered(t *testing.T) {
	sender := &fakeSender{}
	h := createTestHandler(t, &Config{EmailEnabled: true}, sender, nil)
	input := createTestInput()
	input.School2 = "s9_enit"

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Contains(t, sender.text, "Second choice: 3A ENIT")
}

func TestHandler_Execute_Disabled(t *testing.T) {
	sender := &fakeSender{}
	h := createTestHandler(t, &Config{}, sender, &fakePublisher{})

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Zero(t, sender.calls)
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	h := createTestHandler(t, &Config{EmailEnabled: true},
		&fakeSender{err: errors.New("throttled")}, nil)

	_, err := h.Execute(context.Background(), createTestInput())
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Equal(t, "email", stdErr.Metadata["channel"])
}

func TestHandler_Execute_StaffFailureAfterEmail(t *testing.T) {
	h := createTestHandler(t, &Config{EmailEnabled: true, StaffEnabled: true},
		&fakeSender{}, &fakePublisher{err: errors.New("topic not found")})

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, output.Status)
	assert.Equal(t, "email-1", output.EmailMessageID)
}

func TestHandler_Execute_StaffOnlyFailure(t *testing.T) {
	h := createTestHandler(t, &Config{StaffEnabled: true},
		nil, &fakePublisher{err: errors.New("topic not found")})

	_, err := h.Execute(context.Background(), createTestInput())
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, apperrors.AsStandardError(err).Code)
}

func TestHandler_Execute_MissingFields(t *testing.T) {
	h := createTestHandler(t, &Config{EmailEnabled: true}, &fakeSender{}, nil)

	_, err := h.Execute(context.Background(), &Input{Email: "john.doe@centrale-casablanca.ma"})
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.AsStandardError(err).Code)
}

func TestHandler_Execute_WithSESMailer(t *testing.T) {
	stub := &sesStub{}
	mailer := awsclient.NewMailer(stub, "mobility@centrale-casablanca.ma")
	h := createTestHandler(t, &Config{EmailEnabled: true}, mailer, nil)

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, "ses-42", output.EmailMessageID)
	require.NotNil(t, stub.input)
	assert.Equal(t, []string{"john.doe@centrale-casablanca.ma"}, stub.input.Destination.ToAddresses)
	assert.Equal(t, "mobility@centrale-casablanca.ma", sdkaws.ToString(stub.input.Source))
}
