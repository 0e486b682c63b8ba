package theme

import (
	"testing"

	"github.com/theirongolddev/wburn/internal/model"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("tokyo-night"); got.Name != "tokyo-night" {
		t.Fatalf("ByName(tokyo-night) = %q", got.Name)
	}
	if got := ByName("no-such-theme"); got.Name != FlexokiDark.Name {
		t.Fatalf("unknown theme = %q, want %q", got.Name, FlexokiDark.Name)
	}
}

func TestActivityColorsDiffer(t *testing.T) {
	for _, th := range All {
		if th.Activity(model.ClassPass) == th.Activity(model.Solidcore) {
			t.Fatalf("%s: both activities share a color", th.Name)
		}
	}
}
