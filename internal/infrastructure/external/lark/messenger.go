package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// receiveIDTypeEmail addresses a message by the recipient's mailbox
const receiveIDTypeEmail = "email"

// Messenger uploads files to Lark IM and sends them as file messages
type Messenger struct {
	sdkClient *SDKClient
	logger    *zap.Logger
}

// NewMessenger creates a new Lark file messenger
func NewMessenger(sdkClient *SDKClient, logger *zap.Logger) *Messenger {
	return &Messenger{
		sdkClient: sdkClient,
		logger:    logger,
	}
}

// UploadFile uploads a PDF and returns its file key
func (m *Messenger) UploadFile(ctx context.Context, fileName string, data []byte) (string, error) {
	req := larkim.NewCreateFileReqBuilder().
		Body(larkim.NewCreateFileReqBodyBuilder().
			FileType("pdf").
			FileName(fileName).
			File(bytes.NewReader(data)).
			Build()).
		Build()

	resp, err := m.sdkClient.GetClient().Im.File.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to upload file",
			zap.String("file_name", fileName),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("file_name", fileName),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	if resp.Data == nil || resp.Data.FileKey == nil || *resp.Data.FileKey == "" {
		return "", fmt.Errorf("upload returned no file key")
	}

	m.logger.Info("File uploaded",
		zap.String("file_name", fileName),
		zap.Int("size", len(data)))
	return *resp.Data.FileKey, nil
}

// SendFile sends an uploaded file to the mailbox owner and returns the message ID
func (m *Messenger) SendFile(ctx context.Context, email, fileKey string) (string, error) {
	content, err := fileMessageContent(fileKey)
	if err != nil {
		return "", err
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDTypeEmail).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(email).
			MsgType("file").
			Content(content).
			Build()).
		Build()

	resp, err := m.sdkClient.GetClient().Im.Message.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("receive_id", email),
			zap.Error(err))
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("receive_id", email),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("receive_id", email))

	return messageID, nil
}

func fileMessageContent(fileKey string) (string, error) {
	content, err := json.Marshal(map[string]string{"file_key": fileKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal message content: %w", err)
	}
	return string(content), nil
}
