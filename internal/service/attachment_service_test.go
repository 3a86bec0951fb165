package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/storage"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

func TestAttachmentServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("metadata is registered on the ticket", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(nil)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		attachment, err := svc.Create(ctx, AttachmentCreateInput{
			TicketID:    ticket.ID,
			UploaderID:  customer.ID,
			FileName:    "speedtest.png",
			StoragePath: "data/attachments/abc_speedtest.png",
			MimeType:    "image/png",
			SizeBytes:   2048,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, attachment.ID)
		assert.Equal(t, ticket.ID, attachment.TicketID)
		assert.Equal(t, "speedtest.png", attachment.FileName)
		assert.EqualValues(t, 2048, attachment.SizeBytes)
		assert.False(t, attachment.CreatedAt.IsZero())
	})

	t.Run("missing ticket reports not found", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(nil)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)

		_, err := svc.Create(ctx, AttachmentCreateInput{
			TicketID:   "no-such-ticket",
			UploaderID: customer.ID,
			FileName:   "x.txt",
		})
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
	})

	t.Run("missing uploader reports not found", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(nil)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := svc.Create(ctx, AttachmentCreateInput{
			TicketID:   ticket.ID,
			UploaderID: "no-such-user",
			FileName:   "x.txt",
		})
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "no-such-user", de.Details["user_id"])
	})
}

func TestAttachmentServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the row and the file", func(t *testing.T) {
		f := newFixture()
		store := storage.NewLocalStore(t.TempDir())
		svc := f.attachmentService(store)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		path, size, err := store.Save("modem-log.txt", strings.NewReader("CRC errors on line"))
		require.NoError(t, err)
		assert.EqualValues(t, len("CRC errors on line"), size)

		attachment, err := svc.Create(ctx, AttachmentCreateInput{
			TicketID:    ticket.ID,
			UploaderID:  customer.ID,
			FileName:    "modem-log.txt",
			StoragePath: path,
			MimeType:    "text/plain",
			SizeBytes:   size,
		})
		require.NoError(t, err)

		deleted, err := svc.Delete(ctx, attachment.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))

		listed, err := svc.ListForTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("unknown id reports deleted false without error", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(nil)

		deleted, err := svc.Delete(ctx, "no-such-attachment")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("row deletion stands when the file is already gone", func(t *testing.T) {
		f := newFixture()
		store := storage.NewLocalStore(t.TempDir())
		svc := f.attachmentService(store)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		path, _, err := store.Save("ghost.txt", strings.NewReader("soon gone"))
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		attachment, err := svc.Create(ctx, AttachmentCreateInput{
			TicketID:    ticket.ID,
			UploaderID:  customer.ID,
			FileName:    "ghost.txt",
			StoragePath: path,
			MimeType:    "text/plain",
		})
		require.NoError(t, err)

		deleted, err := svc.Delete(ctx, attachment.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("blank storage path never touches the disk", func(t *testing.T) {
		f := newFixture()
		store := storage.NewLocalStore(t.TempDir())
		svc := f.attachmentService(store)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		attachment, err := svc.Create(ctx, AttachmentCreateInput{
			TicketID:   ticket.ID,
			UploaderID: customer.ID,
			FileName:   "metadata-only.txt",
		})
		require.NoError(t, err)

		deleted, err := svc.Delete(ctx, attachment.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestAttachmentServiceListForTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("attachments come back oldest first", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(nil)
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
			_, err := svc.Create(ctx, AttachmentCreateInput{
				TicketID:   ticket.ID,
				UploaderID: customer.ID,
				FileName:   name,
			})
			require.NoError(t, err)
		}

		listed, err := svc.ListForTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "one.txt", listed[0].FileName)
		assert.Equal(t, "three.txt", listed[2].FileName)
	})

	t.Run("unknown ticket reports not found", func(t *testing.T) {
		f := newFixture()
		svc := f.attachmentService(nil)

		_, err := svc.ListForTicket(ctx, "no-such-ticket")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "no-such-ticket", de.Details["ticket_id"])
	})
}
