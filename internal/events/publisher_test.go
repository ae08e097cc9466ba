package events

import (
	"context"
	"errors"
	"testing"
)

type recordingPublisher struct {
	keys []string
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	r.keys = append(r.keys, key)
	return r.err
}

func TestEmitSwallowsErrors(t *testing.T) {
	p := &recordingPublisher{err: errors.New("broker down")}
	Emit(context.Background(), p, PracticeSubmitted, map[string]string{"id": "1"})

	if len(p.keys) != 1 || p.keys[0] != PracticeSubmitted {
		t.Errorf("published keys = %v, want [%s]", p.keys, PracticeSubmitted)
	}
}

func TestEmitNilPublisher(t *testing.T) {
	Emit(context.Background(), nil, MockSubmitted, nil)
	if err := (Nop{}).Publish(context.Background(), MockSubmitted, nil); err != nil {
		t.Errorf("Nop.Publish() = %v, want nil", err)
	}
}
