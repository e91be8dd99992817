package camguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldRefKey(t *testing.T) {
	assert.Equal(t, "name", FieldRef{Name: "name"}.Key())
	assert.Equal(t, "camera.cam_server_id", FieldRef{Name: "cam_server_id", Via: "camera"}.Key())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Index: 2, Field: "source", Reason: "unknown unique_id x"}
	assert.Equal(t, "camguard: invalid source at index 2: unknown unique_id x", err.Error())
}
