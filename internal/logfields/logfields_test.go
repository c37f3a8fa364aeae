package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}

func TestSimpleAttrs(t *testing.T) {
	assert.Equal(t, KeyAction, Action("resetTimer").Key)
	assert.Equal(t, int64(12), Seconds(12).Value.Int64())
	assert.Equal(t, "popup", Target("popup").Value.String())
	assert.Equal(t, KeyPath, Path("/tmp/state.yaml").Key)
}
