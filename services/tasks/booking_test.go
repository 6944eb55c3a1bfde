package tasks

import (
	"testing"

	"repairhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCreatedTask(t *testing.T) {
	in := models.BookingCreatedPayload{BookingID: "BK-1-abc", UserID: "u1", AgentID: "a1", Total: 99.5}
	task, opts, err := NewBookingCreatedTask(in)
	require.NoError(t, err)
	assert.Equal(t, TypeBookingCreated, task.Type())
	assert.Len(t, opts, 2)

	out, err := ParseBookingCreated(task)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
