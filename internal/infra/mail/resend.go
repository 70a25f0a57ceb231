package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"go.uber.org/zap"
)

// ResendSender delivers plain-text email through the Resend HTTP API. With no
// API key configured it runs in simulation mode: sends are logged and
// reported as successful so the rest of the pipeline can be exercised
// without a provider account.
type ResendSender struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
	logger  *zap.Logger
}

func NewResendSender(baseURL, apiKey, from string, timeout time.Duration, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	if s.apiKey == "" {
		s.logger.Info("email simulation mode", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	payload, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return err
	}

	endpoint := s.baseURL + "/emails"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+s.apiKey)
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := s.client.Do(request)
	if err != nil {
		s.logger.Error("resend request failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("%w: resend: %v", domain.ErrUnavailable, err)
	}
	defer response.Body.Close()

	s.logger.Info(
		"resend request complete",
		zap.String("to", to),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("%w: resend: status %d", domain.ErrUnavailable, response.StatusCode)
	}
	return nil
}
