package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

// WebSocketHub is the in-app delivery surface backed by the websocket manager.
type WebSocketHub interface {
	SendToUser(userID string, event Event) error
	SendToProject(projectID string, event Event) error
}

// WebSocketChannel delivers events in-app over the websocket hub.
// Pending-review events go to the whole project so any reviewer can
// pick them up; everything else targets the recipient directly.
type WebSocketChannel struct {
	hub WebSocketHub
}

// NewWebSocketChannel creates the in-app channel.
func NewWebSocketChannel(hub WebSocketHub) *WebSocketChannel {
	return &WebSocketChannel{hub: hub}
}

func (c *WebSocketChannel) Name() string { return ChannelWebSocket }

func (c *WebSocketChannel) Send(ctx context.Context, event Event) error {
	if event.Kind == EventSubmissionPending {
		return c.hub.SendToProject(event.ProjectID.String(), event)
	}
	return c.hub.SendToUser(event.RecipientID.String(), event)
}

// PushChannel delivers events as mobile push messages via SNS.
type PushChannel struct {
	client   *sns.Client
	topicARN string
}

// NewPushChannel creates the SNS-backed push channel.
func NewPushChannel(client *sns.Client, topicARN string) *PushChannel {
	return &PushChannel{client: client, topicARN: topicARN}
}

func (c *PushChannel) Name() string { return ChannelPush }

func (c *PushChannel) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	_, err = c.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"recipient_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.RecipientID.String()),
			},
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Kind)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish push notification: %w", err)
	}
	return nil
}

// Directory resolves a user id to a deliverable email address.
type Directory interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// EmailChannel delivers events as email via SESv2.
type EmailChannel struct {
	client    *sesv2.Client
	sender    string
	directory Directory
}

// NewEmailChannel creates the SES-backed email channel.
func NewEmailChannel(client *sesv2.Client, sender string, directory Directory) *EmailChannel {
	return &EmailChannel{client: client, sender: sender, directory: directory}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, event Event) error {
	address, err := c.directory.EmailFor(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient email: %w", err)
	}

	body, err := json.MarshalIndent(event.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	_, err = c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{address},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{
					Data: aws.String(subjectFor(event.Kind)),
				},
				Body: &sestypes.Body{
					Text: &sestypes.Content{
						Data: aws.String(string(body)),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func subjectFor(kind EventKind) string {
	switch kind {
	case EventSubmissionPending:
		return "New verification submission awaiting review"
	case EventSubmissionRejected:
		return "Your verification submission was rejected"
	case EventLowStock:
		return "Inventory item is running low"
	case EventProjectAssignment:
		return "You have been assigned to a task"
	default:
		return "SiteLens notification"
	}
}
