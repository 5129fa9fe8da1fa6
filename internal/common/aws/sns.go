package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// TopicPublisher publishes to one SNS topic.
type TopicPublisher struct {
	client   SNSAPI
	topicARN string
}

func NewSNSClient(cfg sdkaws.Config) *sns.Client {
	return sns.NewFromConfig(cfg)
}

func NewTopicPublisher(client SNSAPI, topicARN string) *TopicPublisher {
	return &TopicPublisher{client: client, topicARN: topicARN}
}

// Publish sends message with string attributes and returns the message id.
func (p *TopicPublisher) Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error) {
	in := &sns.PublishInput{
		TopicArn: sdkaws.String(p.topicARN),
		Subject:  sdkaws.String(subject),
		Message:  sdkaws.String(message),
	}
	if len(attrs) > 0 {
		in.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			in.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(v),
			}
		}
	}

	out, err := p.client.Publish(ctx, in)
	if err != nil {
		return "", fmt.Errorf("sns publish to %s: %w", p.topicARN, err)
	}
	return sdkaws.ToString(out.MessageId), nil
}
