package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/storage"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var uploadNow = time.Date(2026, 5, 9, 13, 0, 0, 0, time.UTC)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type fileFixture struct {
	files     *testutil.MockFileRepository
	storage   *storage.MemoryObjectStorage
	publisher *testutil.RecordingPublisher
	service   *FileService
}

func newFileFixture(cfg FileServiceConfig) *fileFixture {
	f := &fileFixture{
		files:     new(testutil.MockFileRepository),
		storage:   storage.NewMemoryObjectStorage(),
		publisher: testutil.NewRecordingPublisher(),
	}
	f.service = NewFileService(f.files, f.storage, f.publisher, clockwork.NewFakeClockAt(uploadNow), cfg, nil)
	return f
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, code, derr.Code)
}

func TestFileService_Upload(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	f.files.On("Save", mock.Anything, mock.AnythingOfType("*document.FileObject")).Return(nil)

	uploader := uuid.New()
	invoiceID := uuid.New()
	ctx := shared.WithActor(context.Background(), shared.Actor{UserID: uploader})

	resp, err := f.service.Upload(ctx, UploadInput{
		FileName:   "../../March invoice.PDF",
		Body:       bytes.NewReader(samplePDF),
		Size:       int64(len(samplePDF)),
		EntityType: document.EntityCustomerInvoice,
		EntityID:   &invoiceID,
	})
	require.NoError(t, err)

	sum := sha256.Sum256(samplePDF)
	assert.Equal(t, "March invoice.PDF", resp.FileName)
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Equal(t, int64(len(samplePDF)), resp.Size)
	assert.Equal(t, hex.EncodeToString(sum[:]), resp.Checksum)
	assert.Equal(t, invoiceID, *resp.EntityID)
	assert.Equal(t, uploader, *resp.UploadedBy)

	saved := f.files.Calls[0].Arguments.Get(1).(*document.FileObject)
	assert.True(t, strings.HasPrefix(saved.StorageKey, "files/2026/05/"), saved.StorageKey)
	assert.True(t, strings.HasSuffix(saved.StorageKey, ".pdf"))

	exists, err := f.storage.Exists(context.Background(), saved.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	uploaded := events[0].(*document.FileEvent)
	assert.Equal(t, document.EventTypeFileUploaded, uploaded.EventType())
	assert.Equal(t, document.EntityCustomerInvoice, uploaded.EntityType)
}

func TestFileService_Upload_IgnoresClaimedType(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	f.files.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Upload(context.Background(), UploadInput{
		FileName: "notes.pdf",
		Body:     strings.NewReader("Paid in cash at the counter\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", resp.ContentType)
}

func TestFileService_Upload_Rejections(t *testing.T) {
	t.Run("declared size over limit", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{MaxUploadSize: 16})
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF), Size: 1 << 20})
		requireCode(t, err, "FILE_TOO_LARGE")
	})

	t.Run("actual size over limit", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{MaxUploadSize: 16})
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF)})
		requireCode(t, err, "FILE_TOO_LARGE")
		assert.Zero(t, f.storage.Len())
	})

	t.Run("exactly at limit", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{MaxUploadSize: int64(len(samplePDF))})
		f.files.On("Save", mock.Anything, mock.Anything).Return(nil)
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF)})
		require.NoError(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{})
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.txt", Body: strings.NewReader("")})
		requireCode(t, err, "EMPTY_FILE")
	})

	t.Run("executable", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{})
		exe := append([]byte("MZ\x90\x00\x03\x00\x00\x00"), make([]byte, 120)...)
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "invoice.pdf", Body: bytes.NewReader(exe)})
		requireCode(t, err, "UNSUPPORTED_FILE_TYPE")
	})

	t.Run("custom allow-list", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{AllowedTypes: []string{"image/png"}})
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF)})
		requireCode(t, err, "UNSUPPORTED_FILE_TYPE")
	})

	t.Run("unknown entity type", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{})
		id := uuid.New()
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF), EntityType: "warehouse", EntityID: &id})
		requireCode(t, err, "INVALID_ENTITY_TYPE")
	})

	t.Run("entity type without id", func(t *testing.T) {
		f := newFileFixture(FileServiceConfig{})
		_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF), EntityType: document.EntityProject})
		requireCode(t, err, "INVALID_ENTITY_ID")
	})
}

func TestFileService_Upload_RemovesBlobWhenSaveFails(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	f.files.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.service.Upload(context.Background(), UploadInput{FileName: "a.pdf", Body: bytes.NewReader(samplePDF)})
	require.Error(t, err)
	assert.Zero(t, f.storage.Len())
	assert.Empty(t, f.publisher.Events())
}

func storedFile(t *testing.T, f *fileFixture) *document.FileObject {
	t.Helper()
	sum := sha256.Sum256(samplePDF)
	file, err := document.NewFileObject("receipt.pdf", "application/pdf", int64(len(samplePDF)), hex.EncodeToString(sum[:]), uploadNow)
	require.NoError(t, err)
	file.ClearDomainEvents()
	require.NoError(t, f.storage.Put(context.Background(), file.StorageKey, bytes.NewReader(samplePDF), int64(len(samplePDF)), "application/pdf"))
	f.files.On("FindByID", mock.Anything, file.ID).Return(file, nil)
	return file
}

func TestFileService_DownloadURL(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	file := storedFile(t, f)

	link, err := f.service.DownloadURL(context.Background(), file.ID)
	require.NoError(t, err)
	assert.Contains(t, link.URL, file.StorageKey)
	assert.Equal(t, uploadNow.Add(DefaultPresignExpiration), link.ExpiresAt)
}

func TestFileService_Download(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	file := storedFile(t, f)

	body, meta, err := f.service.Download(context.Background(), file.ID)
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, content)
	assert.Equal(t, "receipt.pdf", meta.FileName)
}

func TestFileService_Download_MissingBlob(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	file := storedFile(t, f)
	require.NoError(t, f.storage.Delete(context.Background(), file.StorageKey))

	_, _, err := f.service.Download(context.Background(), file.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFileService_Delete(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	file := storedFile(t, f)
	f.files.On("Delete", mock.Anything, file.ID).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), file.ID))
	assert.Zero(t, f.storage.Len())
	assert.Equal(t, []string{document.EventTypeFileDeleted}, f.publisher.EventTypes())
}

func TestFileService_Delete_NotFound(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	id := uuid.New()
	f.files.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	assert.ErrorIs(t, f.service.Delete(context.Background(), id), shared.ErrNotFound)
}

func TestFileService_List(t *testing.T) {
	f := newFileFixture(FileServiceConfig{})
	projectID := uuid.New()
	matches := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["entity_type"] == document.EntityProject && filter.Filters["entity_id"] == projectID.String()
	})
	f.files.On("FindAll", mock.Anything, matches).Return([]document.FileObject{}, nil)
	f.files.On("Count", mock.Anything, matches).Return(int64(0), nil)

	page, err := f.service.List(context.Background(), FileListFilter{EntityType: document.EntityProject, EntityID: projectID.String()})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
}
