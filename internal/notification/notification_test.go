package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterWebhookSender(t *testing.T) {
	webhookSender = nil

	mockSender := func(event string, payload interface{}) error {
		return nil
	}

	RegisterWebhookSender(mockSender)
	assert.NotNil(t, webhookSender)
}

func TestRegisterWebhookSender_CalledCorrectly(t *testing.T) {
	webhookSender = nil

	var capturedEvent string
	var capturedPayload interface{}

	mockSender := func(event string, payload interface{}) error {
		capturedEvent = event
		capturedPayload = payload
		return nil
	}

	RegisterWebhookSender(mockSender)

	err := webhookSender("tax_confirmations.generated", 42)
	assert.NoError(t, err)
	assert.Equal(t, "tax_confirmations.generated", capturedEvent)
	assert.Equal(t, 42, capturedPayload)
}
