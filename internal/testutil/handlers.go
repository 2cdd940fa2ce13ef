package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/registry"
	"github.com/sakura-flow/sakura/internal/value"
)

// CountingModule registers a blossom that counts its executions. Useful to
// prove dry-run isolation and execution counts.
type CountingModule struct {
	Group string
	Name  string

	validations atomic.Int32
	executions  atomic.Int32
}

// Register registers the counting handler.
func (m *CountingModule) Register(r *registry.Registry) error {
	if !r.Register(m.Group, m.Name, (*countingHandler)(m)) {
		return registry.ErrDuplicate(m.Group, m.Name)
	}
	return nil
}

// Validations returns how often ValidateInput ran.
func (m *CountingModule) Validations() int {
	return int(m.validations.Load())
}

// Executions returns how often Execute ran.
func (m *CountingModule) Executions() int {
	return int(m.executions.Load())
}

type countingHandler CountingModule

func (h *countingHandler) ValidateInput(it *item.Blossom) error {
	h.validations.Add(1)
	return nil
}

func (h *countingHandler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	h.executions.Add(1)
	return nil
}

// FailingModule registers a blossom that always fails with a fixed message.
type FailingModule struct {
	Group   string
	Name    string
	Message string
}

// Register registers the failing handler.
func (m *FailingModule) Register(r *registry.Registry) error {
	if !r.Register(m.Group, m.Name, &failingHandler{message: m.Message}) {
		return registry.ErrDuplicate(m.Group, m.Name)
	}
	return nil
}

type failingHandler struct {
	message string
}

func (h *failingHandler) ValidateInput(it *item.Blossom) error { return nil }

func (h *failingHandler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	return fmt.Errorf("%s", h.message)
}

// RecordingModule registers a blossom that records the string value of its
// "id" input in execution order.
type RecordingModule struct {
	Group string
	Name  string

	mu  sync.Mutex
	ids []string
}

// Register registers the recording handler.
func (m *RecordingModule) Register(r *registry.Registry) error {
	if !r.Register(m.Group, m.Name, (*recordingHandler)(m)) {
		return registry.ErrDuplicate(m.Group, m.Name)
	}
	return nil
}

// IDs returns the recorded ids in execution order.
func (m *RecordingModule) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}

type recordingHandler RecordingModule

func (h *recordingHandler) ValidateInput(it *item.Blossom) error {
	if !it.Values.Has("id") {
		return fmt.Errorf("recorder needs an \"id\" value")
	}
	return nil
}

func (h *recordingHandler) Execute(ctx context.Context, it *item.Blossom, values value.Environment) error {
	v, ok := values["id"]
	if !ok || v.IsNull() || v.Type() != cty.String {
		return fmt.Errorf("recorder needs a string \"id\" value")
	}
	h.mu.Lock()
	h.ids = append(h.ids, v.AsString())
	h.mu.Unlock()
	return nil
}
