package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "/notification-alert/user-1", UserChannel("user-1"))
}

func TestFakePublisherRecordsAlerts(t *testing.T) {
	publisher := NewFakePublisher()
	assert.Empty(t, publisher.AlertsFor(UserChannel("user-1")))

	alert := Alert{NotificationType: 1, TopicTitle: "a topic"}
	assert.NoError(t, publisher.Publish(UserChannel("user-1"), alert))
	assert.NoError(t, publisher.Publish(UserChannel("user-1"), alert))

	assert.Len(t, publisher.AlertsFor(UserChannel("user-1")), 2)
	assert.Empty(t, publisher.AlertsFor(UserChannel("user-2")))
}
