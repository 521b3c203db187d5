package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medihelp/internal/models"
	"medihelp/internal/repositories/memory"
	"medihelp/internal/utils"
	"medihelp/pkg/logger"
)

func newTestChatService(t *testing.T) (*ChatService, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	return NewChatService(memory.NewConversationRepository(), users, logger.NewNop()), users
}

func seedUser(users *memory.UserRepository, name string, role models.UserRole) primitive.ObjectID {
	id := primitive.NewObjectID()
	users.Add(&models.User{ID: id, Name: name, Email: name + "@example.com", Role: role})
	return id
}

func TestFindOrCreateConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then reuses regardless of argument order", func(t *testing.T) {
		service, users := newTestChatService(t)
		patient := seedUser(users, "amina", models.UserRolePatient)
		doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)

		first, created, err := service.FindOrCreateConversation(ctx, patient, doctor)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, first.Participants, 2)
		assert.Equal(t, 0, first.UnreadFor(patient))
		assert.Equal(t, 0, first.UnreadFor(doctor))

		second, created, err := service.FindOrCreateConversation(ctx, doctor, patient)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("rejects self conversation", func(t *testing.T) {
		service, users := newTestChatService(t)
		patient := seedUser(users, "amina", models.UserRolePatient)

		_, _, err := service.FindOrCreateConversation(ctx, patient, patient)
		assert.ErrorIs(t, err, utils.ErrValidation)
	})

	t.Run("rejects zero participant", func(t *testing.T) {
		service, users := newTestChatService(t)
		patient := seedUser(users, "amina", models.UserRolePatient)

		_, _, err := service.FindOrCreateConversation(ctx, patient, primitive.NilObjectID)
		assert.ErrorIs(t, err, utils.ErrValidation)
	})
}

func TestSendMessageUnreadCounts(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)

	conversation, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)

	const sends = 5
	for i := 0; i < sends; i++ {
		_, err := service.SendMessage(ctx, conversation.ID, patient, "checking in", nil)
		require.NoError(t, err)
	}

	updated, err := service.GetConversation(ctx, conversation.ID, doctor)
	require.NoError(t, err)
	assert.Equal(t, sends, updated.UnreadFor(doctor), "each send increments the recipient")
	assert.Equal(t, 0, updated.UnreadFor(patient), "sender count never moves")
	assert.Equal(t, "checking in", updated.LastMessage)
	require.NotNil(t, updated.LastSenderID)
	assert.Equal(t, patient, *updated.LastSenderID)
}

func TestSendMessageConcurrentUnreadCounts(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)

	conversation, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)

	const senders = 20
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.SendMessage(ctx, conversation.ID, patient, "ping", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	updated, err := service.GetConversation(ctx, conversation.ID, doctor)
	require.NoError(t, err)
	assert.Equal(t, senders, updated.UnreadFor(doctor), "no increment lost under concurrency")
	assert.Equal(t, 0, updated.UnreadFor(patient))

	_, total, err := service.ListMessages(ctx, conversation.ID, doctor, &utils.PaginationParams{Page: 1, Limit: senders})
	require.NoError(t, err)
	assert.EqualValues(t, senders, total)
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)
	outsider := seedUser(users, "mallory", models.UserRolePatient)

	conversation, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)

	t.Run("empty payload rejected", func(t *testing.T) {
		_, err := service.SendMessage(ctx, conversation.ID, patient, "", nil)
		assert.ErrorIs(t, err, utils.ErrValidation)
	})

	t.Run("attachment-only message allowed", func(t *testing.T) {
		message, err := service.SendMessage(ctx, conversation.ID, patient, "", []models.Attachment{
			{URL: "https://files.medihelp.app/scan.pdf", Name: "scan.pdf", MimeType: "application/pdf"},
		})
		require.NoError(t, err)
		assert.Empty(t, message.Text)
		assert.Len(t, message.Attachments, 1)
	})

	t.Run("non-participant forbidden", func(t *testing.T) {
		_, err := service.SendMessage(ctx, conversation.ID, outsider, "let me in", nil)
		assert.ErrorIs(t, err, utils.ErrForbidden)
	})

	t.Run("sender starts read", func(t *testing.T) {
		message, err := service.SendMessage(ctx, conversation.ID, doctor, "take two daily", nil)
		require.NoError(t, err)
		assert.True(t, message.IsReadBy(doctor))
		assert.False(t, message.IsReadBy(patient))
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)

	conversation, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := service.SendMessage(ctx, conversation.ID, patient, "ping", nil)
		require.NoError(t, err)
	}

	require.NoError(t, service.MarkRead(ctx, conversation.ID, doctor))

	updated, err := service.GetConversation(ctx, conversation.ID, doctor)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UnreadFor(doctor))

	messages, _, err := service.ListMessages(ctx, conversation.ID, doctor, &utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	for _, message := range messages {
		assert.True(t, message.IsReadBy(doctor))
	}

	// Marking again is a no-op, and receipts are not duplicated.
	require.NoError(t, service.MarkRead(ctx, conversation.ID, doctor))
	messages, _, err = service.ListMessages(ctx, conversation.ID, doctor, &utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	for _, message := range messages {
		count := 0
		for _, receipt := range message.ReadBy {
			if receipt.UserID == doctor {
				count++
			}
		}
		assert.Equal(t, 1, count)
	}
}

func TestGetConversationAccess(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)
	outsider := seedUser(users, "mallory", models.UserRolePatient)

	conversation, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)

	_, err = service.GetConversation(ctx, conversation.ID, outsider)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = service.GetConversation(ctx, primitive.NewObjectID(), patient)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestListConversations(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)
	pharmacy := seedUser(users, "city-pharmacy", models.UserRolePharmacy)

	withDoctor, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)
	_, _, err = service.FindOrCreateConversation(ctx, patient, pharmacy)
	require.NoError(t, err)

	_, err = service.SendMessage(ctx, withDoctor.ID, doctor, "results are in", nil)
	require.NoError(t, err)

	views, err := service.ListConversations(ctx, patient)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Most recently active first, annotated with the other party.
	assert.Equal(t, withDoctor.ID, views[0].ID)
	require.NotNil(t, views[0].Counterpart)
	assert.Equal(t, doctor, views[0].Counterpart.ID)
	assert.Equal(t, 1, views[0].UnreadCount)
	require.NotNil(t, views[1].Counterpart)
	assert.Equal(t, pharmacy, views[1].Counterpart.ID)
	assert.Equal(t, 0, views[1].UnreadCount)
}

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	alice := seedUser(users, "alice", models.UserRolePatient)
	bob := seedUser(users, "bob", models.UserRoleDoctor)

	conversation, created, err := service.FindOrCreateConversation(ctx, alice, bob)
	require.NoError(t, err)
	require.True(t, created)

	_, err = service.SendMessage(ctx, conversation.ID, alice, "Hello", nil)
	require.NoError(t, err)

	fromBob, err := service.GetConversation(ctx, conversation.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, fromBob.UnreadFor(bob))

	messages, _, err := service.ListMessages(ctx, conversation.ID, bob, &utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello", messages[0].Text)
	assert.True(t, messages[0].IsReadBy(alice))
	assert.False(t, messages[0].IsReadBy(bob))

	require.NoError(t, service.MarkRead(ctx, conversation.ID, bob))

	fromBob, err = service.GetConversation(ctx, conversation.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, fromBob.UnreadFor(bob))

	messages, _, err = service.ListMessages(ctx, conversation.ID, bob, &utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.True(t, messages[0].IsReadBy(bob))
}

func TestSearchMessages(t *testing.T) {
	ctx := context.Background()
	service, users := newTestChatService(t)
	patient := seedUser(users, "amina", models.UserRolePatient)
	doctor := seedUser(users, "dr-okafor", models.UserRoleDoctor)

	conversation, _, err := service.FindOrCreateConversation(ctx, patient, doctor)
	require.NoError(t, err)

	for _, text := range []string{"blood pressure looks fine", "Blood test on friday", "see you then"} {
		_, err := service.SendMessage(ctx, conversation.ID, doctor, text, nil)
		require.NoError(t, err)
	}

	results, err := service.SearchMessages(ctx, conversation.ID, patient, "blood")
	require.NoError(t, err)
	assert.Len(t, results, 2, "match is case-insensitive substring")

	_, err = service.SearchMessages(ctx, conversation.ID, patient, "")
	assert.ErrorIs(t, err, utils.ErrValidation)
}
