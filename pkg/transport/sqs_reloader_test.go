package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return &sqs.DeleteMessageOutput{}, args.Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateFamilies(ctx context.Context, families ...string) (int, error) {
	args := m.Called(ctx, families)
	return args.Int(0), args.Error(1)
}

const queueURL = "https://sqs.sa-east-1.amazonaws.com/123/bolt-invalidation"

func message(id, body string) types.Message {
	return types.Message{MessageId: aws.String(id), Body: aws.String(body), ReceiptHandle: aws.String("rh-" + id)}
}

func deleteOf(id string) *sqs.DeleteMessageInput {
	return &sqs.DeleteMessageInput{QueueUrl: aws.String(queueURL), ReceiptHandle: aws.String("rh-" + id)}
}

func TestSQSInvalidator_Start(t *testing.T) {
	sqsMock := new(MockSQSClient)
	target := new(MockInvalidator)

	sqsMock.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{
			message("1", `{"families":["transportadoras","transportadoras-stats"],"source":"erp"}`),
			message("2", `não é json`),
			message("3", `{"families":["transportadora-codigos"]}`),
		},
	}, nil).Once()
	sqsMock.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	sqsMock.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil)

	processed := make(chan struct{}, 2)
	signal := func(mock.Arguments) { processed <- struct{}{} }
	target.On("InvalidateFamilies", mock.Anything, []string{"transportadoras", "transportadoras-stats"}).Return(3, nil).Run(signal)
	target.On("InvalidateFamilies", mock.Anything, []string{"transportadora-codigos"}).Return(0, errors.New("redis fora")).Run(signal)

	inv := NewSQSInvalidator(sqsMock, queueURL, target, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		inv.Start(ctx)
		close(done)
	}()

	waitFor(t, processed, 2)
	cancel()
	<-done

	sqsMock.AssertCalled(t, "DeleteMessage", mock.Anything, deleteOf("1"))
	sqsMock.AssertCalled(t, "DeleteMessage", mock.Anything, deleteOf("2"))
	sqsMock.AssertNotCalled(t, "DeleteMessage", mock.Anything, deleteOf("3"))
}

func TestSQSInvalidator_RetriesAfterError(t *testing.T) {
	sqsMock := new(MockSQSClient)
	target := new(MockInvalidator)

	sqsMock.On("ReceiveMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	sqsMock.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{message("9", `{"families":["transportadoras"]}`)},
	}, nil).Once()
	sqsMock.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	sqsMock.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil)
	processed := make(chan struct{}, 1)
	target.On("InvalidateFamilies", mock.Anything, []string{"transportadoras"}).Return(1, nil).
		Run(func(mock.Arguments) { processed <- struct{}{} })

	inv := NewSQSInvalidator(sqsMock, queueURL, target, nil)
	inv.retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go inv.Start(ctx)

	waitFor(t, processed, 1)
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("esperadas %d invalidações, recebidas %d", n, i)
		}
	}
}

func TestSQSInvalidator_NoQueue(t *testing.T) {
	sqsMock := new(MockSQSClient)
	NewSQSInvalidator(sqsMock, "", new(MockInvalidator), nil).Start(context.Background())
	sqsMock.AssertNotCalled(t, "ReceiveMessage", mock.Anything, mock.Anything)
}

func TestParseInvalidation(t *testing.T) {
	t.Run("envelope SNS", func(t *testing.T) {
		body := `{"Type":"Notification","MessageId":"m1","Message":"{\"families\":[\"transportadoras\"]}"}`
		ev, err := ParseInvalidation(body)
		require.NoError(t, err)
		assert.Equal(t, []string{"transportadoras"}, ev.Families)
	})

	t.Run("famílias vazias", func(t *testing.T) {
		_, err := ParseInvalidation(`{"families":["",""]}`)
		assert.ErrorIs(t, err, errEmptyEvent)
	})
}
