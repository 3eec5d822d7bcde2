package lark

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/pkg/utils"
)

// fileMessenger is the part of the Lark IM API delivery needs
type fileMessenger interface {
	UploadFile(ctx context.Context, fileName string, data []byte) (string, error)
	SendFile(ctx context.Context, email, fileKey string) (string, error)
}

// Sender delivers finished documents as Lark file messages.
// Implements port.DeliverySender.
type Sender struct {
	messenger fileMessenger
	logger    *zap.Logger
}

// NewSender creates a delivery sender backed by the Lark messenger
func NewSender(messenger *Messenger, logger *zap.Logger) *Sender {
	return newSender(messenger, logger)
}

func newSender(messenger fileMessenger, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		messenger: messenger,
		logger:    logger,
	}
}

// Deliver uploads the document carried by the data URI and sends it to the address
func (s *Sender) Deliver(ctx context.Context, req port.DeliveryRequest) error {
	address := strings.TrimSpace(req.Address)
	if err := utils.ValidateEmail(address); err != nil {
		return err
	}

	_, data, err := DecodeDataURI(req.DataURI)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("document is empty")
	}

	name := req.DisplayName
	if name == "" {
		name = "report.pdf"
	}

	s.logger.Info("Delivering document",
		zap.String("address", address),
		zap.String("file_name", name),
		zap.Int("size", len(data)))

	fileKey, err := s.messenger.UploadFile(ctx, name, data)
	if err != nil {
		return err
	}
	messageID, err := s.messenger.SendFile(ctx, address, fileKey)
	if err != nil {
		return err
	}

	s.logger.Info("Document delivered",
		zap.String("address", address),
		zap.String("message_id", messageID))
	return nil
}

// Verify interface compliance
var _ port.DeliverySender = (*Sender)(nil)
