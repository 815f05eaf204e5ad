package errors

import (
	stderrors "errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessageAndChain(t *testing.T) {
	err := NewError("failed to bind ", "0.0.0.0:9292").Base(syscall.EADDRINUSE)

	assert.Equal(t, "failed to bind 0.0.0.0:9292 > "+syscall.EADDRINUSE.Error(), err.Error())
	assert.True(t, stderrors.Is(err, syscall.EADDRINUSE))
}

func TestError_NoInner(t *testing.T) {
	err := NewError("unexpected length of ip")
	assert.Equal(t, "unexpected length of ip", err.String())
	assert.Nil(t, err.Unwrap())
}
