package postgres

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextAndFlag(t *testing.T) {
	assert.Equal(t, "", text(nil))
	v := "x"
	assert.Equal(t, "x", text(&v))

	assert.False(t, flag(nil))
	b := true
	assert.True(t, flag(&b))
}

func TestJSONArg(t *testing.T) {
	assert.Nil(t, jsonArg(nil))
	assert.Nil(t, jsonArg(json.RawMessage{}))
	raw := json.RawMessage(`{"a":1}`)
	assert.Equal(t, any(raw), jsonArg(raw))
}

func TestIntsArg(t *testing.T) {
	assert.Equal(t, []int64{}, intsArg(nil))
	assert.Equal(t, []int64{1, 2}, intsArg([]int64{1, 2}))
}
