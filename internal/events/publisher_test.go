package events

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainEvent(t *testing.T) {
	payload := ResponseSubmittedEvent{ResponseID: uuid.New(), TotalScore: 12}
	event := NewDomainEvent(EventResponseSubmitted, payload)

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, EventResponseSubmitted, event.Type)
	assert.Equal(t, eventSource, event.Source)
	assert.Equal(t, eventVersion, event.Version)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, payload, event.Data)
}

func TestDomainEvent_PartitionKey(t *testing.T) {
	event := NewDomainEvent(EventDocumentGenerated, nil)
	assert.Equal(t, event.ID, event.PartitionKey())

	questionnaireID := uuid.NewString()
	event.ForSubject(questionnaireID)
	assert.Equal(t, questionnaireID, event.Subject)
	assert.Equal(t, questionnaireID, event.PartitionKey())
}

func TestPartitionKeyFromMetadata(t *testing.T) {
	msg := message.NewMessage("id-1", nil)
	msg.Metadata.Set(partitionKeyMetadata, "subject-1")

	key, err := partitionKey("crm-events", msg)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", key)
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(nil)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, NewDomainEvent(EventResponseSubmitted, nil)))
	require.NoError(t, publisher.Publish(ctx, NewDomainEvent(EventDocumentGenerated, nil)))

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, EventResponseSubmitted, published[0].Type)
	assert.Equal(t, EventDocumentGenerated, published[1].Type)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
	assert.NoError(t, publisher.Close())
}
