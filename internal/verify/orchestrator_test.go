package verify_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tally/internal/api"
	"tally/internal/notify"
	"tally/internal/verify"
)

func TestOrchestrator_Verify(t *testing.T) {
	type testCase struct {
		name         string
		receiptID    string
		setupMock    func(m *verify.MockClient)
		wantErr      bool
		wantState    verify.State
		wantResult   bool
		wantMessage  string
		wantSeverity notify.Severity
	}

	tests := []testCase{
		{
			name:      "ValidReceipt",
			receiptID: "rcpt-1",
			setupMock: func(m *verify.MockClient) {
				m.EXPECT().
					Verify(gomock.Any(), "rcpt-1").
					Return(&api.VerifyResponse{
						IsValid: true,
						Message: "Receipt is valid",
					}, nil)
			},
			wantState:    verify.StateResolved,
			wantResult:   true,
			wantMessage:  "Receipt is valid",
			wantSeverity: notify.SeveritySuccess,
		},
		{
			name:      "InvalidReceipt",
			receiptID: "rcpt-2",
			setupMock: func(m *verify.MockClient) {
				m.EXPECT().
					Verify(gomock.Any(), "rcpt-2").
					Return(&api.VerifyResponse{
						IsValid: false,
						Message: "Receipt verification failed",
					}, nil)
			},
			wantState:    verify.StateResolved,
			wantResult:   true,
			wantMessage:  "Receipt verification failed",
			wantSeverity: notify.SeverityError,
		},
		{
			name:      "ServiceError",
			receiptID: "missing",
			setupMock: func(m *verify.MockClient) {
				m.EXPECT().
					Verify(gomock.Any(), "missing").
					Return(nil, &api.Error{StatusCode: http.StatusNotFound, Message: "Receipt not found"})
			},
			wantErr:      true,
			wantState:    verify.StateFailed,
			wantMessage:  "Receipt not found",
			wantSeverity: notify.SeverityError,
		},
		{
			name:      "TransportError",
			receiptID: "rcpt-3",
			setupMock: func(m *verify.MockClient) {
				m.EXPECT().
					Verify(gomock.Any(), "rcpt-3").
					Return(nil, errors.New("connection refused"))
			},
			wantErr:      true,
			wantState:    verify.StateFailed,
			wantMessage:  "Verification failed",
			wantSeverity: notify.SeverityError,
		},
		{
			name:      "EmptyIdentifierIsNoOp",
			receiptID: "",
			setupMock: func(m *verify.MockClient) {},
			wantState: verify.StateIdle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := verify.NewMockClient(ctrl)
			tt.setupMock(client)

			queue := notify.New(time.Minute)
			defer queue.Close()

			o := verify.NewOrchestrator(client, queue)
			err := o.Verify(context.Background(), tt.receiptID)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.wantState, o.State())

			if tt.wantResult {
				require.NotNil(t, o.Result())
				assert.Equal(t, tt.wantMessage, o.Result().Message)
			} else {
				assert.Nil(t, o.Result())
			}

			if tt.wantMessage == "" {
				assert.Empty(t, queue.Active())
				return
			}

			events := queue.Active()
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantMessage, events[0].Message)
			assert.Equal(t, tt.wantSeverity, events[0].Severity)
		})
	}
}

func TestOrchestrator_FailureClearsPriorResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := verify.NewMockClient(ctrl)
	client.EXPECT().
		Verify(gomock.Any(), "rcpt-1").
		Return(&api.VerifyResponse{IsValid: true, Message: "Receipt is valid"}, nil)
	client.EXPECT().
		Verify(gomock.Any(), "rcpt-1").
		Return(nil, errors.New("network down"))

	queue := notify.New(time.Minute)
	defer queue.Close()

	o := verify.NewOrchestrator(client, queue)

	require.NoError(t, o.Verify(context.Background(), "rcpt-1"))
	require.NotNil(t, o.Result())

	require.Error(t, o.Verify(context.Background(), "rcpt-1"))
	assert.Nil(t, o.Result(), "a failed attempt must never leave the previous result visible")
	assert.Equal(t, verify.StateFailed, o.State())
}

func TestOrchestrator_RejectsReentryWhilePending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	started := make(chan struct{})

	client := verify.NewMockClient(ctrl)
	client.EXPECT().
		Verify(gomock.Any(), "slow").
		DoAndReturn(func(ctx context.Context, id string) (*api.VerifyResponse, error) {
			close(started)
			<-release
			return &api.VerifyResponse{IsValid: true, Message: "Receipt is valid"}, nil
		})

	queue := notify.New(time.Minute)
	defer queue.Close()

	o := verify.NewOrchestrator(client, queue)

	done := make(chan error, 1)
	go func() {
		done <- o.Verify(context.Background(), "slow")
	}()

	<-started
	assert.Equal(t, verify.StatePending, o.State())
	assert.ErrorIs(t, o.Verify(context.Background(), "slow"), verify.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, verify.StateResolved, o.State())
}
