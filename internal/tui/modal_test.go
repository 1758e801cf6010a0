package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/kroget/pkg/tuitest"
)

func TestModal(t *testing.T) {
	m := NewModal("Apply proposal to cart?", "2 item(s) will be added to your cart.")

	assert.True(t, m.Visible())
	assert.True(t, m.ConfirmSelected())

	m.ToggleSelection()
	assert.False(t, m.ConfirmSelected())

	out := tuitest.StripANSI(m.Overlay("background", 80, 20))
	assert.Contains(t, out, "Apply proposal to cart?")
	assert.Contains(t, out, "2 item(s) will be added")
	assert.NotContains(t, out, "background")
}

func TestModal_HiddenKeepsBackground(t *testing.T) {
	var m Modal
	assert.Equal(t, "background", m.Overlay("background", 80, 20))
}
