package bus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmcl/protocol"
)

type canExchange struct {
	id   uint32
	data []byte
}

// fakeFrameConn is a scripted canbus.FrameConn.
type fakeFrameConn struct {
	sent    []canExchange
	replies []canExchange
	closed  bool
}

func (c *fakeFrameConn) Send(id uint32, data []byte) error {
	d := make([]byte, len(data))
	copy(d, data)
	c.sent = append(c.sent, canExchange{id: id, data: d})
	return nil
}

func (c *fakeFrameConn) Receive(timeout time.Duration) (uint32, []byte, error) {
	if len(c.replies) == 0 {
		return 0, nil, fmt.Errorf("no frame within %v: %w", timeout, protocol.ErrTimeout)
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.id, r.data, nil
}

func (c *fakeFrameConn) Close() error {
	c.closed = true
	return nil
}

func canReply(replyAddr uint8, status protocol.Status, cmd protocol.Command, value int32) []byte {
	return protocol.Reply{
		ReplyAddress: replyAddr,
		Status:       status,
		Command:      cmd,
		Value:        value,
	}.Encode(protocol.FramingCAN)
}

func TestCANSend(t *testing.T) {
	conn := &fakeFrameConn{}
	conn.replies = append(conn.replies, canExchange{id: 3, data: canReply(2, protocol.StatusSuccess, protocol.GAP, 4711)})
	b := NewCAN(conn)
	require.Equal(t, protocol.FramingCAN, b.Framing())

	got, err := b.Send(3, protocol.GAP, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(4711), got.Value)
	assert.Equal(t, uint8(3), got.ModuleAddress, "module address comes from the arbitration ID")

	// The payload carries no address byte; it starts at the opcode.
	require.Len(t, conn.sent, 1)
	assert.Equal(t, uint32(3), conn.sent[0].id)
	require.Len(t, conn.sent[0].data, protocol.CANPayloadLen)
	assert.Equal(t, uint8(protocol.GAP), conn.sent[0].data[0])
}

func TestCANSendDeviceError(t *testing.T) {
	conn := &fakeFrameConn{}
	conn.replies = append(conn.replies, canExchange{id: 3, data: canReply(2, protocol.StatusInvalidValue, protocol.SAP, 5000)})
	b := NewCAN(conn)

	_, err := b.Send(3, protocol.SAP, 6, 0, 5000)

	var devErr *protocol.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, protocol.StatusInvalidValue, devErr.Status)
	assert.Equal(t, int32(5000), devErr.Value)
}

func TestCANSendTimeout(t *testing.T) {
	b := NewCAN(&fakeFrameConn{})
	b.SetReplyTimeout(10 * time.Millisecond)

	_, err := b.Send(3, protocol.MST, 0, 0, 0)
	require.ErrorIs(t, err, protocol.ErrTimeout)
}

func TestCANClose(t *testing.T) {
	conn := &fakeFrameConn{}
	b := NewCAN(conn)
	require.NoError(t, b.Close())
	assert.True(t, conn.closed)
}
