package eventful_test

import (
	"testing"

	"github.com/labi-le/clipwatch/pkg/clipboard/eventful"
)

func TestDeduplicator_Check(t *testing.T) {
	var d eventful.Deduplicator

	steps := []struct {
		data  string
		fresh bool
	}{
		{"a", true},
		{"a", false},
		{"b", true},
		{"a", true},
		{"a", false},
	}

	for i, step := range steps {
		if _, fresh := d.Check([]byte(step.data)); fresh != step.fresh {
			t.Fatalf("step %d (%q): want fresh=%v, got %v", i, step.data, step.fresh, fresh)
		}
	}
}

func TestDeduplicator_ZeroHashFirst(t *testing.T) {
	var d eventful.Deduplicator

	if _, fresh := d.CheckHash(0); !fresh {
		t.Fatal("first payload must always pass")
	}
	if _, fresh := d.CheckHash(0); fresh {
		t.Fatal("repeated payload must be dropped")
	}
}
