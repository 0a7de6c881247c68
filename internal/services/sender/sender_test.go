package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookease/bookease-backend/internal/lib/smtp"
	"github.com/bookease/bookease-backend/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func eventBody(t *testing.T) []byte {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	body, err := json.Marshal(models.SubscriptionEvent{
		AccountID:    "acc-1",
		Email:        "asha@example.com",
		Name:         "Asha",
		PackageType:  models.PackageGrowth,
		BillingCycle: models.BillingMonthly,
		PackagePrice: 799,
		StartDate:    start,
		EndDate:      start.Add(30 * 24 * time.Hour),
		OrderID:      "order_1",
		PaymentID:    "pay_1",
	})
	require.NoError(t, err)
	return body
}

// expectDelivery настраивает успешную отправку; contains проверяет текст письма.
func expectDelivery(tr *MockTransport, contains ...string) {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	tr.On("GetSMTPUser").Return("noreply@bookease.in")
	tr.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "noreply@bookease.in").Return(nil).Once()
	mockClient.On("Rcpt", "asha@example.com").Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.MatchedBy(func(p []byte) bool {
		for _, s := range contains {
			if !strings.Contains(string(p), s) {
				return false
			}
		}
		return true
	})).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
}

func TestSenderService_SendActivationReceipt(t *testing.T) {
	tests := []struct {
		name          string
		body          func(t *testing.T) []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success - send receipt",
			body: eventBody,
			setupMocks: func(tr *MockTransport) {
				expectDelivery(tr,
					"Subject: Your BookEase Growth plan is active",
					"INR 799",
					"Valid until:   31 Mar 2026",
					"order_1",
				)
			},
		},
		{
			name: "invalid JSON",
			body: func(_ *testing.T) []byte { return []byte(`invalid json`) },
			setupMocks: func(_ *MockTransport) {
			},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name: "no recipient",
			body: func(_ *testing.T) []byte { return []byte(`{"account_id":"acc-1"}`) },
			setupMocks: func(_ *MockTransport) {
			},
			expectedError: true,
			errorMessage:  "has no recipient",
		},
		{
			name: "SMTP connection error",
			body: eventBody,
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("noreply@bookease.in")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)
			tt.setupMocks(transport)

			err := service.SendActivationReceipt(context.Background(), tt.body(t))

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_SendExpiryNotice(t *testing.T) {
	transport := new(MockTransport)
	expectDelivery(transport,
		"Subject: Your BookEase subscription has expired",
		"Growth (monthly) subscription ended on 31 Mar 2026",
	)
	service := NewSenderService(newNoopLogger(), transport)

	err := service.SendExpiryNotice(context.Background(), eventBody(t))
	assert.NoError(t, err)
	transport.AssertExpectations(t)
}

func TestSenderService_SMTPErrorHandling(t *testing.T) {
	tests := []struct {
		name         string
		setupMocks   func(*MockTransport)
		errorMessage string
	}{
		{
			name: "SMTP Mail error",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("noreply@bookease.in")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@bookease.in").Return(errors.New("mail error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "mail error",
		},
		{
			name: "SMTP Rcpt error",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("noreply@bookease.in")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@bookease.in").Return(nil).Once()
				mockClient.On("Rcpt", "asha@example.com").Return(errors.New("rcpt error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "rcpt error",
		},
		{
			name: "SMTP Data error",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("noreply@bookease.in")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@bookease.in").Return(nil).Once()
				mockClient.On("Rcpt", "asha@example.com").Return(nil).Once()
				mockClient.On("Data").Return(nil, errors.New("data error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "data error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)
			tt.setupMocks(transport)

			err := service.SendActivationReceipt(context.Background(), eventBody(t))

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
			transport.AssertExpectations(t)
		})
	}
}
