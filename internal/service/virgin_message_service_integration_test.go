package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// VirginMessageServiceIntegrationTestSuite exercises the moderation workflow on SQLite
type VirginMessageServiceIntegrationTestSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	uploader *testutil.FakeUploader
	notifier *testutil.FakeNotifier
	service  *service.VirginMessageService
	testUser *models.User
	ctx      context.Context
}

func (s *VirginMessageServiceIntegrationTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.ctx = context.Background()
}

func (s *VirginMessageServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest gives every test a clean database and fresh fakes
func (s *VirginMessageServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.testUser = testutil.CreateTestUser(s.T(), s.testDB.DB, "u1", "e1@example.com", testutil.DefaultPassword, models.RoleUser)
	s.uploader = &testutil.FakeUploader{}
	s.notifier = &testutil.FakeNotifier{}
	s.service = s.newService(service.ModerationOptions{MaxImageBytes: 1024})
}

func (s *VirginMessageServiceIntegrationTestSuite) newService(opts service.ModerationOptions) *service.VirginMessageService {
	return service.NewVirginMessageService(
		repository.NewVirginMessageRepository(s.testDB.DB),
		repository.NewUserRepository(s.testDB.DB),
		s.uploader,
		s.notifier,
		opts,
	)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestCreate_YieldsPendingMessage() {
	before := time.Now()

	id, err := s.service.Create(s.ctx, s.testUser.ID, "Gracias Virgencita", nil)
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), uuid.Nil, id)

	var stored models.VirginMessage
	require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", id).Error)
	assert.False(s.T(), stored.Approved)
	assert.Equal(s.T(), "Gracias Virgencita", stored.Text)
	assert.Nil(s.T(), stored.ImageURL)
	assert.False(s.T(), stored.PublishedAt.After(time.Now()))
	assert.False(s.T(), stored.PublishedAt.Before(before.Add(-time.Second)))
}

func (s *VirginMessageServiceIntegrationTestSuite) TestCreate_Validation() {
	testCases := []struct {
		name     string
		userID   uuid.UUID
		text     string
		expected error
	}{
		{"unknown user", uuid.New(), "Hola", service.ErrUserNotFound},
		{"empty text", s.testUser.ID, "", service.ErrEmptyText},
		{"whitespace text", s.testUser.ID, "   \n\t", service.ErrEmptyText},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			id, err := s.service.Create(s.ctx, tc.userID, tc.text, nil)
			assert.ErrorIs(s.T(), err, tc.expected)
			assert.Equal(s.T(), uuid.Nil, id)
		})
	}
}

func (s *VirginMessageServiceIntegrationTestSuite) TestApprove_SendsOneEmail() {
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Por mi madre", false)

	approved, err := s.service.Approve(s.ctx, msg.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), approved.Approved)

	require.Len(s.T(), s.notifier.Sent, 1)
	assert.Equal(s.T(), "approval", s.notifier.Sent[0].Kind)
	assert.Equal(s.T(), "e1@example.com", s.notifier.Sent[0].To)
	assert.Equal(s.T(), "u1", s.notifier.Sent[0].Name)

	var stored models.VirginMessage
	require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", msg.ID).Error)
	assert.True(s.T(), stored.Approved)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestApprove_UsesFirstNameWhenSet() {
	s.testDB.DB.Model(s.testUser).Update("first_name", "María")
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Gracias", false)

	_, err := s.service.Approve(s.ctx, msg.ID)
	require.NoError(s.T(), err)

	require.Len(s.T(), s.notifier.Sent, 1)
	assert.Equal(s.T(), "María", s.notifier.Sent[0].Name)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestApprove_UnknownID() {
	_, err := s.service.Approve(s.ctx, uuid.New())

	assert.ErrorIs(s.T(), err, service.ErrMessageNotFound)
	assert.Empty(s.T(), s.notifier.Sent)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestApprove_EmailFailureKeepsPending() {
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Gracias", false)
	s.notifier.Err = errors.New("smtp down")

	_, err := s.service.Approve(s.ctx, msg.ID)
	assert.Error(s.T(), err)

	var stored models.VirginMessage
	require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", msg.ID).Error)
	assert.False(s.T(), stored.Approved)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestApprove_ReapproveIsNoop() {
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Gracias", true)

	approved, err := s.service.Approve(s.ctx, msg.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), approved.Approved)
	assert.Empty(s.T(), s.notifier.Sent)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestApprove_ReapproveResendsWhenEnabled() {
	svc := s.newService(service.ModerationOptions{ResendOnReapprove: true})
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Gracias", true)

	_, err := svc.Approve(s.ctx, msg.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, s.notifier.Count("approval"))
}

func (s *VirginMessageServiceIntegrationTestSuite) TestReject_SendsEmailAndDeletes() {
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Borrar", false)

	confirmation, err := s.service.Reject(s.ctx, msg.ID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), confirmation, msg.ID.String())
	assert.Equal(s.T(), 1, s.notifier.Count("rejection"))

	all, err := s.service.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), all)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestReject_UnknownID() {
	_, err := s.service.Reject(s.ctx, uuid.New())

	assert.ErrorIs(s.T(), err, service.ErrMessageNotFound)
	assert.Empty(s.T(), s.notifier.Sent)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestReject_EmailFailureKeepsMessage() {
	msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Gracias", false)
	s.notifier.Err = errors.New("smtp down")

	_, err := s.service.Reject(s.ctx, msg.ID)
	assert.Error(s.T(), err)

	all, err := s.service.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 1)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestUpdate() {
	owner := service.Actor{UserID: s.testUser.ID}
	other := testutil.CreateTestUser(s.T(), s.testDB.DB, "u2", "e2@example.com", testutil.DefaultPassword, models.RoleUser)
	admin := testutil.DefaultAdminUser(s.T(), s.testDB.DB)

	newText := "Texto corregido"
	empty := " "

	s.Run("owner edits pending message", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)

		id, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Texto: &newText}, owner)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), msg.ID, id)

		var stored models.VirginMessage
		require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", msg.ID).Error)
		assert.Equal(s.T(), newText, stored.Text)
		assert.False(s.T(), stored.Approved)
	})

	s.Run("admin edits another user's message", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)

		_, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Texto: &newText}, service.Actor{UserID: admin.ID, IsAdmin: true})
		assert.NoError(s.T(), err)
	})

	s.Run("approved message is locked", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Publicado", true)

		_, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Texto: &newText}, owner)
		assert.ErrorIs(s.T(), err, service.ErrApprovedMessageLocked)
	})

	s.Run("non owner is forbidden", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)

		_, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Texto: &newText}, service.Actor{UserID: other.ID})
		assert.ErrorIs(s.T(), err, service.ErrForbidden)
	})

	s.Run("empty text rejected", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)

		_, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Texto: &empty}, owner)
		assert.ErrorIs(s.T(), err, service.ErrEmptyText)
	})

	s.Run("unknown id", func() {
		_, err := s.service.Update(s.ctx, uuid.New(), service.VirginMessageUpdate{Texto: &newText}, owner)
		assert.ErrorIs(s.T(), err, service.ErrMessageNotFound)
	})

	s.Run("new image is uploaded", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)
		calls := s.uploader.CallCount()

		image := &media.Upload{Name: "vela.png", Data: testutil.PNGBytes(64)}
		_, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Imagen: image}, owner)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), calls+1, s.uploader.CallCount())

		var stored models.VirginMessage
		require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", msg.ID).Error)
		require.NotNil(s.T(), stored.ImageURL)
		assert.Equal(s.T(), "https://media.test/"+media.FolderMessages+"/vela.png", *stored.ImageURL)
		assert.Equal(s.T(), "Original", stored.Text)
	})

	s.Run("invalid image leaves message untouched", func() {
		msg := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)
		calls := s.uploader.CallCount()

		image := &media.Upload{Name: "anim.gif", Data: testutil.GIFBytes()}
		_, err := s.service.Update(s.ctx, msg.ID, service.VirginMessageUpdate{Texto: &newText, Imagen: image}, owner)
		assert.Error(s.T(), err)
		assert.Equal(s.T(), calls, s.uploader.CallCount())

		var stored models.VirginMessage
		require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", msg.ID).Error)
		assert.Equal(s.T(), "Original", stored.Text)
		assert.Nil(s.T(), stored.ImageURL)
	})

	s.Run("no upload when edit is refused", func() {
		locked := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Publicado", true)
		pending := testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "Original", false)
		calls := s.uploader.CallCount()
		image := &media.Upload{Name: "vela.png", Data: testutil.PNGBytes(64)}

		_, err := s.service.Update(s.ctx, locked.ID, service.VirginMessageUpdate{Imagen: image}, owner)
		assert.ErrorIs(s.T(), err, service.ErrApprovedMessageLocked)

		_, err = s.service.Update(s.ctx, pending.ID, service.VirginMessageUpdate{Imagen: image}, service.Actor{UserID: other.ID})
		assert.ErrorIs(s.T(), err, service.ErrForbidden)

		assert.Equal(s.T(), calls, s.uploader.CallCount())
	})
}

func (s *VirginMessageServiceIntegrationTestSuite) TestFilter_PartitionsMessages() {
	empty, err := s.service.Filter(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), empty.Aprobados)
	assert.Empty(s.T(), empty.Pendientes)

	testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "uno", true)
	testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "dos", false)
	testutil.CreateTestMessage(s.T(), s.testDB.DB, s.testUser, "tres", false)

	result, err := s.service.Filter(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), result.Aprobados, 1)
	assert.Len(s.T(), result.Pendientes, 2)
	for _, m := range result.Aprobados {
		assert.True(s.T(), m.Approved)
	}
	for _, m := range result.Pendientes {
		assert.False(s.T(), m.Approved)
	}

	approved, err := s.service.ListApproved(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), approved, 1)
	assert.Equal(s.T(), "uno", approved[0].Texto)
	assert.Equal(s.T(), "u1", approved[0].Autor)
}

func (s *VirginMessageServiceIntegrationTestSuite) TestUploadImage() {
	s.Run("valid png goes to messages folder", func() {
		url, err := s.service.UploadImage(s.ctx, media.Upload{Name: "vela.png", Data: testutil.PNGBytes(64)})
		require.NoError(s.T(), err)
		assert.Contains(s.T(), url, media.FolderMessages)
		require.Equal(s.T(), 1, s.uploader.CallCount())
		assert.Equal(s.T(), media.FolderMessages, s.uploader.Calls[0].Folder)
	})

	s.Run("invalid files never reach the uploader", func() {
		s.uploader.Calls = nil

		_, err := s.service.UploadImage(s.ctx, media.Upload{Name: "big.png", Data: testutil.PNGBytes(2048)})
		assert.ErrorIs(s.T(), err, media.ErrFileTooLarge)

		_, err = s.service.UploadImage(s.ctx, media.Upload{Name: "anim.gif", Data: testutil.GIFBytes()})
		assert.ErrorIs(s.T(), err, media.ErrUnsupportedType)

		_, err = s.service.UploadImage(s.ctx, media.Upload{Name: "empty.png"})
		assert.ErrorIs(s.T(), err, media.ErrEmptyFile)

		assert.Equal(s.T(), 0, s.uploader.CallCount())
	})

	s.Run("uploader failure propagates", func() {
		s.uploader.Err = errors.New("host unavailable")
		defer func() { s.uploader.Err = nil }()

		_, err := s.service.UploadImage(s.ctx, media.Upload{Name: "vela.png", Data: testutil.PNGBytes(64)})
		assert.ErrorIs(s.T(), err, s.uploader.Err)
	})
}

// TestGraciasVirgencitaScenario walks one message through its whole lifecycle
func (s *VirginMessageServiceIntegrationTestSuite) TestGraciasVirgencitaScenario() {
	id, err := s.service.Create(s.ctx, s.testUser.ID, "Gracias Virgencita", nil)
	require.NoError(s.T(), err)

	filtered, err := s.service.Filter(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), filtered.Pendientes, 1)
	assert.Equal(s.T(), id, filtered.Pendientes[0].ID)
	assert.Empty(s.T(), filtered.Aprobados)

	approved, err := s.service.Approve(s.ctx, id)
	require.NoError(s.T(), err)
	assert.True(s.T(), approved.Approved)
	assert.Equal(s.T(), 1, s.notifier.Count("approval"))

	filtered, err = s.service.Filter(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), filtered.Aprobados, 1)
	assert.Empty(s.T(), filtered.Pendientes)

	edit := "Otro texto"
	_, err = s.service.Update(s.ctx, id, service.VirginMessageUpdate{Texto: &edit}, service.Actor{UserID: s.testUser.ID})
	assert.ErrorIs(s.T(), err, service.ErrApprovedMessageLocked)

	_, err = s.service.Reject(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, s.notifier.Count("rejection"))

	all, err := s.service.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), all)
}

func TestVirginMessageServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(VirginMessageServiceIntegrationTestSuite))
}
