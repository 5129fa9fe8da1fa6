package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Mailer sends email through SES from a fixed sender.
type Mailer struct {
	client SESAPI
	from   string
}

func NewSESClient(cfg sdkaws.Config) *ses.Client {
	return ses.NewFromConfig(cfg)
}

func NewMailer(client SESAPI, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// Send delivers one message and returns the SES message id.
func (m *Mailer) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	body := &types.Body{Text: &types.Content{Data: sdkaws.String(text), Charset: sdkaws.String("UTF-8")}}
	if html != "" {
		body.Html = &types.Content{Data: sdkaws.String(html), Charset: sdkaws.String("UTF-8")}
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: sdkaws.String(subject), Charset: sdkaws.String("UTF-8")},
			Body:    body,
		},
		Source: sdkaws.String(m.from),
	})
	if err != nil {
		return "", fmt.Errorf("ses send to %s: %w", to, err)
	}
	return sdkaws.ToString(out.MessageId), nil
}
