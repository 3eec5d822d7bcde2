package lark

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/port"
)

// MockMessenger is a mock implementation of fileMessenger
type MockMessenger struct {
	UploadFileFunc func(ctx context.Context, fileName string, data []byte) (string, error)
	SendFileFunc   func(ctx context.Context, email, fileKey string) (string, error)
}

func (m *MockMessenger) UploadFile(ctx context.Context, fileName string, data []byte) (string, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, fileName, data)
	}
	return "file_v2_key", nil
}

func (m *MockMessenger) SendFile(ctx context.Context, email, fileKey string) (string, error) {
	if m.SendFileFunc != nil {
		return m.SendFileFunc(ctx, email, fileKey)
	}
	return "om_message", nil
}

func pdfDataURI(data []byte) string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	t.Run("decodes base64 payload", func(t *testing.T) {
		contentType, data, err := DecodeDataURI(pdfDataURI([]byte("%PDF-1.4")))
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", contentType)
		assert.Equal(t, []byte("%PDF-1.4"), data)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, uri := range []string{
			"",
			"application/pdf;base64,AAAA",
			"data:application/pdf;base64",
			"data:application/pdf,plain",
			"data:application/pdf;base64,%%%",
		} {
			_, _, err := DecodeDataURI(uri)
			assert.ErrorIs(t, err, ErrInvalidDataURI, uri)
		}
	})
}

func TestSender_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads then sends to the address", func(t *testing.T) {
		var uploaded []byte
		var sentTo, sentKey, uploadedName string
		mock := &MockMessenger{
			UploadFileFunc: func(ctx context.Context, fileName string, data []byte) (string, error) {
				uploadedName = fileName
				uploaded = data
				return "file_key_1", nil
			},
			SendFileFunc: func(ctx context.Context, email, fileKey string) (string, error) {
				sentTo = email
				sentKey = fileKey
				return "om_1", nil
			},
		}
		sender := newSender(mock, zap.NewNop())

		err := sender.Deliver(ctx, port.DeliveryRequest{
			Address:     " lead@example.com ",
			DataURI:     pdfDataURI([]byte("%PDF-1.4 body")),
			DisplayName: "Site_Inspection_2024-03-09.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "Site_Inspection_2024-03-09.pdf", uploadedName)
		assert.Equal(t, []byte("%PDF-1.4 body"), uploaded)
		assert.Equal(t, "lead@example.com", sentTo)
		assert.Equal(t, "file_key_1", sentKey)
	})

	t.Run("rejects invalid address before uploading", func(t *testing.T) {
		called := false
		mock := &MockMessenger{
			UploadFileFunc: func(ctx context.Context, fileName string, data []byte) (string, error) {
				called = true
				return "", nil
			},
		}
		err := newSender(mock, zap.NewNop()).Deliver(ctx, port.DeliveryRequest{
			Address: "not-an-email",
			DataURI: pdfDataURI([]byte("x")),
		})
		assert.Error(t, err)
		assert.False(t, called)
	})

	t.Run("propagates upload failure", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		mock := &MockMessenger{
			UploadFileFunc: func(ctx context.Context, fileName string, data []byte) (string, error) {
				return "", boom
			},
		}
		err := newSender(mock, zap.NewNop()).Deliver(ctx, port.DeliveryRequest{
			Address: "lead@example.com",
			DataURI: pdfDataURI([]byte("x")),
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects empty document", func(t *testing.T) {
		err := newSender(&MockMessenger{}, zap.NewNop()).Deliver(ctx, port.DeliveryRequest{
			Address: "lead@example.com",
			DataURI: "data:application/pdf;base64,",
		})
		assert.Error(t, err)
	})
}

func TestFileMessageContent(t *testing.T) {
	content, err := fileMessageContent(`key"1`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_key":"key\"1"}`, content)
}
