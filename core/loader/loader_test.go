package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	on := &stubFeature{name: "mods", enabled: true}
	off := &stubFeature{name: "resolver"}
	mgr := NewManager(zap.NewNop())
	mgr.Register(on)
	mgr.Register(off)

	assert.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, mgr.Features(), 2)

	broken := &stubFeature{name: "collections", enabled: true, err: errors.New("boom")}
	mgr.Register(broken)
	err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "collections")
}
