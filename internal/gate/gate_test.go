package gate_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/novalabs/novawallet/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelGateApprove(t *testing.T) {
	g := gate.NewChannelGate()
	ctx := context.Background()

	decided := make(chan bool, 1)
	go func() {
		approved, err := g.Show(ctx, &gate.Request{Kind: gate.KindPayment, Message: "send 1 SOL"})
		assert.NoError(t, err)
		decided <- approved
	}()

	in, err := g.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, gate.KindPayment, in.Request.Kind)
	in.Approve()

	assert.True(t, <-decided)
}

func TestChannelGateReject(t *testing.T) {
	g := gate.NewChannelGate()
	ctx := context.Background()

	decided := make(chan bool, 1)
	go func() {
		approved, _ := g.Show(ctx, &gate.Request{Kind: gate.KindPayment})
		decided <- approved
	}()

	in, err := g.Next(ctx)
	require.NoError(t, err)
	in.Reject()

	assert.False(t, <-decided)
}

func TestChannelGateCloseResolvesPendingAsRejected(t *testing.T) {
	g := gate.NewChannelGate()

	decided := make(chan bool, 1)
	go func() {
		approved, err := g.Show(context.Background(), &gate.Request{})
		assert.NoError(t, err)
		decided <- approved
	}()

	// Tear the gate down without ever consuming the request.
	time.Sleep(10 * time.Millisecond)
	g.Close()

	select {
	case approved := <-decided:
		assert.False(t, approved)
	case <-time.After(time.Second):
		t.Fatal("Show did not resolve after Close")
	}
}

func TestChannelGateShowAfterCloseRejects(t *testing.T) {
	g := gate.NewChannelGate()
	g.Close()

	approved, err := g.Show(context.Background(), &gate.Request{})
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestChannelGateDoubleResolveIsSafe(t *testing.T) {
	g := gate.NewChannelGate()
	ctx := context.Background()

	go g.Show(ctx, &gate.Request{}) //nolint:errcheck

	in, err := g.Next(ctx)
	require.NoError(t, err)
	in.Approve()
	in.Reject() // must not panic or block
}

func TestNextAfterClose(t *testing.T) {
	g := gate.NewChannelGate()
	g.Close()
	_, err := g.Next(context.Background())
	assert.ErrorIs(t, err, gate.ErrClosed)
}

func TestTerminalGateYes(t *testing.T) {
	var out strings.Builder
	term := &gate.Terminal{In: strings.NewReader("y\n"), Out: &out}

	approved, err := term.Show(context.Background(), &gate.Request{
		Message:       "swap 10 tokens",
		Warning:       "recipient account does not yet exist on-chain",
		SerializedTxs: [][]byte{{1}, {2}},
	})
	require.NoError(t, err)
	assert.True(t, approved)
	assert.Contains(t, out.String(), "swap 10 tokens")
	assert.Contains(t, out.String(), "does not yet exist")
	assert.Contains(t, out.String(), "2 transaction(s)")
}

func TestTerminalGateDefaultIsNo(t *testing.T) {
	var out strings.Builder
	term := &gate.Terminal{In: strings.NewReader("\n"), Out: &out}

	approved, err := term.Show(context.Background(), &gate.Request{})
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestTerminalGateEOFIsRejection(t *testing.T) {
	var out strings.Builder
	term := &gate.Terminal{In: strings.NewReader(""), Out: &out}

	approved, err := term.Show(context.Background(), &gate.Request{})
	require.NoError(t, err)
	assert.False(t, approved)
}
