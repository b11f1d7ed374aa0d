package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/notify"
	"tally/internal/scan"
	"tally/internal/verify"
)

func TestVerifyModel_ScanFailureLeavesIdentifierUntouched(t *testing.T) {
	queue := notify.New(time.Minute)
	defer queue.Close()

	m := NewVerifyModel(verify.NewOrchestrator(nil, queue), queue)
	m.input.SetValue("typed-by-hand")

	updated, _ := m.Update(scanResultMsg{err: scan.ErrNoCodeFound})
	m = updated.(VerifyModel)

	assert.Equal(t, "typed-by-hand", m.input.Value())

	events := queue.Active()
	require.Len(t, events, 1)
	assert.Equal(t, notify.SeverityError, events[0].Severity)
	assert.Equal(t, "No QR code detected", events[0].Message)
}

func TestVerifyModel_ScanSuccessFillsIdentifier(t *testing.T) {
	queue := notify.New(time.Minute)
	defer queue.Close()

	m := NewVerifyModel(verify.NewOrchestrator(nil, queue), queue)

	updated, _ := m.Update(scanResultMsg{decoded: scan.Decoded{
		RawText:    "https://host/verify/rcpt-9",
		Identifier: "rcpt-9",
	}})
	m = updated.(VerifyModel)

	assert.Equal(t, "rcpt-9", m.input.Value())

	events := queue.Active()
	require.Len(t, events, 1)
	assert.Equal(t, notify.SeveritySuccess, events[0].Severity)
}
