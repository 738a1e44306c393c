package sms

import (
	"context"

	"go.uber.org/zap"
)

// DryRunSender logs messages instead of sending them.
type DryRunSender struct {
	logger *zap.Logger
}

// NewDryRunSender builds a sender that only logs.
func NewDryRunSender(logger *zap.Logger) *DryRunSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRunSender{logger: logger}
}

// SendTextMessage logs the message and reports success.
func (s *DryRunSender) SendTextMessage(_ context.Context, phone, message string) bool {
	s.logger.Info("sms dry run", zap.String("mobile", phone), zap.String("msg", message))
	return true
}
