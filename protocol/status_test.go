package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOK(t *testing.T) {
	assert.True(t, StatusSuccess.OK())
	assert.True(t, StatusLoadedIntoEEPROM.OK())

	for _, s := range []Status{
		StatusWrongChecksum,
		StatusInvalidCommand,
		StatusWrongType,
		StatusInvalidValue,
		StatusEEPROMLocked,
		StatusCommandNotAvailable,
	} {
		assert.False(t, s.OK(), "status %d", s)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "invalid value", StatusInvalidValue.String())
	assert.Equal(t, "status(42)", Status(42).String())
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "ROR", ROR.String())
	assert.Equal(t, "MVP", MVP.String())
	assert.Equal(t, "CMD(200)", Command(200).String())
}
