package bus

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmcl/protocol"
)

// mockPort is a scripted serial transport. Replies can be queued up front
// (FIFO tests) or generated per write (concurrency tests). An empty stream
// behaves like a silent module: reads time out.
type mockPort struct {
	mu        sync.Mutex
	writes    [][]byte
	stream    []byte
	autoReply func(frame []byte) []byte
	inFlight  bool
	violated  bool
	closed    bool
}

func (p *mockPort) queue(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stream = append(p.stream, data...)
}

func (p *mockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame := make([]byte, len(b))
	copy(frame, b)
	p.writes = append(p.writes, frame)

	if p.autoReply != nil {
		if p.inFlight {
			// A second request went out before the previous reply was
			// consumed; the bus lock is broken.
			p.violated = true
		}
		p.inFlight = true
		p.stream = append(p.stream, p.autoReply(frame)...)
	}
	return len(b), nil
}

func (p *mockPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.stream) == 0 {
		return 0, fmt.Errorf("mock port silent: %w", protocol.ErrTimeout)
	}
	n := copy(b, p.stream)
	p.stream = p.stream[n:]
	if len(p.stream) == 0 {
		p.inFlight = false
	}
	return n, nil
}

func (p *mockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func reply(replyAddr, moduleAddr uint8, status protocol.Status, cmd protocol.Command, value int32) []byte {
	return protocol.Reply{
		ReplyAddress:  replyAddr,
		ModuleAddress: moduleAddr,
		Status:        status,
		Command:       cmd,
		Value:         value,
	}.Encode(protocol.FramingSerial)
}

func TestSendSuccess(t *testing.T) {
	port := &mockPort{}
	port.queue(reply(1, 1, protocol.StatusSuccess, protocol.ROR, 0))
	b := New(port)

	got, err := b.Send(1, protocol.ROR, 0, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusSuccess, got.Status)
	assert.Equal(t, int32(0), got.Value)

	// Exactly one 9-byte request went out, with the expected encoding.
	require.Len(t, port.writes, 1)
	want, _ := protocol.Request{Address: 1, Command: protocol.ROR, Value: 500}.Encode(protocol.FramingSerial)
	assert.Equal(t, want, port.writes[0])
}

func TestSendDeviceError(t *testing.T) {
	port := &mockPort{}
	port.queue(reply(1, 1, protocol.StatusInvalidValue, protocol.ROR, 999))
	b := New(port)

	_, err := b.Send(1, protocol.ROR, 0, 0, 500)

	var devErr *protocol.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, protocol.StatusInvalidValue, devErr.Status)
	assert.Equal(t, protocol.ROR, devErr.Command)
	assert.Equal(t, int32(999), devErr.Value)
}

func TestSendChecksumMismatch(t *testing.T) {
	frame := reply(1, 1, protocol.StatusSuccess, protocol.MST, 0)
	frame[len(frame)-1] ^= 0xFF

	port := &mockPort{}
	port.queue(frame)
	b := New(port)

	_, err := b.Send(1, protocol.MST, 0, 0, 0)

	var csErr *protocol.ChecksumError
	require.ErrorAs(t, err, &csErr)
}

func TestSendShortReply(t *testing.T) {
	port := &mockPort{}
	port.queue(reply(1, 1, protocol.StatusSuccess, protocol.MST, 0)[:5])
	b := New(port)

	_, err := b.Send(1, protocol.MST, 0, 0, 0)

	var mfErr *protocol.MalformedFrameError
	require.ErrorAs(t, err, &mfErr)
	assert.Equal(t, 5, mfErr.Got)
}

func TestSendTimeout(t *testing.T) {
	b := New(&mockPort{})

	_, err := b.Send(1, protocol.GAP, 1, 0, 0)
	require.ErrorIs(t, err, protocol.ErrTimeout)
}

func TestSendValidatesBeforeIO(t *testing.T) {
	port := &mockPort{}
	b := New(port)

	_, err := b.Send(0, protocol.ROR, 0, 0, 0)
	var encErr *protocol.EncodingError
	require.ErrorAs(t, err, &encErr)

	_, err = b.Send(1, protocol.MVP, 0, 0, int64(1)<<33)
	require.ErrorAs(t, err, &encErr)

	assert.Empty(t, port.writes, "no bytes may hit the transport on encoding failures")
}

// Requests issued sequentially are matched to queued replies strictly in
// order: there is no correlation field on the wire, only the exchange
// discipline.
func TestSendFIFOOrder(t *testing.T) {
	port := &mockPort{}
	for _, v := range []int32{10, 20, 30} {
		port.queue(reply(1, 1, protocol.StatusSuccess, protocol.GAP, v))
	}
	b := New(port)

	for _, want := range []int32{10, 20, 30} {
		got, err := b.Send(1, protocol.GAP, 1, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got.Value)
	}
}

func TestConcurrentSendsSerialized(t *testing.T) {
	port := &mockPort{
		autoReply: func(frame []byte) []byte {
			return reply(1, frame[0], protocol.StatusSuccess, protocol.Command(frame[1]), 0)
		},
	}
	b := New(port)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Send(1, protocol.GAP, 1, 0, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, port.violated, "request bytes interleaved with another exchange")
	assert.Len(t, port.writes, 20)
}

func TestModuleFactoryNoIO(t *testing.T) {
	port := &mockPort{}
	b := New(port)

	m, err := b.Module(3)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), m.Address())

	_, err = b.Module(0)
	var encErr *protocol.EncodingError
	require.ErrorAs(t, err, &encErr)

	_, err = b.Motor(7, 0)
	require.NoError(t, err)

	assert.Empty(t, port.writes)
}

func TestBusClose(t *testing.T) {
	port := &mockPort{}
	b := New(port)
	require.NoError(t, b.Close())
	assert.True(t, port.closed)
}

func TestErrorsNotRetried(t *testing.T) {
	frame := reply(1, 1, protocol.StatusSuccess, protocol.MST, 0)
	frame[2] ^= 0xFF

	port := &mockPort{}
	port.queue(frame)
	b := New(port)

	_, err := b.Send(1, protocol.MST, 0, 0, 0)
	require.Error(t, err)
	assert.Len(t, port.writes, 1, "a failed exchange must not be resent")
	assert.True(t, errors.As(err, new(*protocol.ChecksumError)))
}
