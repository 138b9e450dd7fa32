package service

import (
	"net/http"
	"testing"

	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsAreScopedToOwner(t *testing.T) {
	h := newHarness(t)
	owner, _ := h.actor(model.RoleStudent)
	other, _ := h.actor(model.RoleStudent)

	h.notifier.Notify(h.ctx, owner.ID, model.NotificationInfo, "Hello", "first", "")
	h.notifier.Notify(h.ctx, owner.ID, model.NotificationSuccess, "Again", "second", "/courses")

	list, err := h.notifier.List(h.ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = h.notifier.MarkRead(h.ctx, other, list[0].ID)
	requireAPIError(t, err, http.StatusNotFound, "notification_not_found")

	read, err := h.notifier.MarkRead(h.ctx, owner, list[0].ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	unread, err := h.notifier.List(h.ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, list[0].ID, unread[0].ID)

	none, err := h.notifier.List(h.ctx, other, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}
