package mq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msg, err := newMessage(map[string]string{"type": "reservation.created"}, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, now, msg.Timestamp)
	assert.NotEmpty(t, msg.MessageId)

	var got map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, "reservation.created", got["type"])
}

func TestNewMessage_Unmarshalable(t *testing.T) {
	_, err := newMessage(make(chan int), time.Now())
	assert.Error(t, err)
}
