package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/vpn-store/internal/lib/smtp"
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

type bufferWriter struct {
	data   []byte
	closed bool
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const validBody = `{"orderId":"o1","email":"buyer@example.com","name":"Aung","username":"u1","password":"p1","serverInfo":"sg1.vpn.example","items":["NordVPN 1 Month"]}`

func TestSenderService_SendDeliveryNotification(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := &bufferWriter{}

	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@example.com").Return(nil).Once()
	client.On("Rcpt", "buyer@example.com").Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	s := NewSenderService(newNoopLogger(), transport)
	err := s.SendDeliveryNotification(context.Background(), []byte(validBody))
	require.NoError(t, err)

	body := string(writer.data)
	assert.True(t, writer.closed)
	assert.Contains(t, body, "To: buyer@example.com")
	assert.Contains(t, body, "Subject: Your VPN account is ready (order o1)")
	assert.Contains(t, body, "Username: u1")
	assert.Contains(t, body, "Password: p1")
	assert.Contains(t, body, "Server: sg1.vpn.example")
	assert.Contains(t, body, "Items: NordVPN 1 Month")
	transport.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestSenderService_SendDeliveryNotification_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setupMocks  func(*MockTransport, *MockSMTPClient)
		wantInvalid bool
	}{
		{
			name:        "invalid JSON",
			body:        `invalid json`,
			setupMocks:  func(*MockTransport, *MockSMTPClient) {},
			wantInvalid: true,
		},
		{
			name:        "missing email",
			body:        `{"orderId":"o1"}`,
			setupMocks:  func(*MockTransport, *MockSMTPClient) {},
			wantInvalid: true,
		},
		{
			name: "connect error",
			body: validBody,
			setupMocks: func(tr *MockTransport, _ *MockSMTPClient) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(nil, errors.New("connection refused")).Once()
			},
		},
		{
			name: "rcpt rejected",
			body: validBody,
			setupMocks: func(tr *MockTransport, c *MockSMTPClient) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(c, nil).Once()
				c.On("Mail", "noreply@example.com").Return(nil).Once()
				c.On("Rcpt", "buyer@example.com").Return(errors.New("550 no such user")).Once()
				c.On("Close").Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			client := new(MockSMTPClient)
			tt.setupMocks(transport, client)

			s := NewSenderService(newNoopLogger(), transport)
			err := s.SendDeliveryNotification(context.Background(), []byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.wantInvalid, errors.Is(err, ErrInvalidMessage))
			transport.AssertExpectations(t)
			client.AssertExpectations(t)
		})
	}
}
