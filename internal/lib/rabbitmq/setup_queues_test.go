package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotificationQueues(t *testing.T) {
	queues := GetNotificationQueues()
	require.Len(t, queues, 2)

	assert.Equal(t, VerificationQueue, queues[0].QueueName)
	assert.Equal(t, VerificationRoutingKey, queues[0].RoutingKey)
	assert.Equal(t, PasswordResetQueue, queues[1].QueueName)
	assert.Equal(t, PasswordResetRoutingKey, queues[1].RoutingKey)
}
