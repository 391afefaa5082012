package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrail/dogdeck/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendsEventWithActionAttribute(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "votes",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	evt := NewVoteEvent(VoteLike, domain.DogImage{ID: "img-1", URL: "https://cdn.example/img-1.jpg"})
	require.NoError(t, pub.Publish(context.Background(), evt))
	require.NotNil(t, client.input, "client was not called")

	assert.Equal(t, "https://example.com/queue", aws.ToString(client.input.QueueUrl))
	attr, ok := client.input.MessageAttributes["action"]
	require.True(t, ok)
	assert.Equal(t, "String", aws.ToString(attr.DataType))
	assert.Equal(t, "like", aws.ToString(attr.StringValue))
	assert.Contains(t, aws.ToString(client.input.MessageBody), `"image_id":"img-1"`)
}

func TestSQSPublisherWrapsSendError(t *testing.T) {
	boom := errors.New("boom")
	pub := &sqsPublisher{
		id:       "votes",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: boom},
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), Event{ImageID: "img-1", Action: VoteSkip})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewSQSPublisherRequiresConfigBlock(t *testing.T) {
	_, err := newSQSPublisher(context.Background(), PublisherConfig{ID: "q", Type: TypeSQS}, nil)
	require.Error(t, err)
}

func TestNewSQSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "q",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL: "http://localhost:4566/000000000000/votes",
			AWSConfig: AWSConfig{
				Region:          "us-east-1",
				Endpoint:        "http://localhost:4566",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "q", pub.ID())
	assert.Equal(t, TypeSQS, pub.Type())
	assert.NoError(t, pub.Close())
}
