package privilege

import "testing"

func TestElevatedIsStable(t *testing.T) {
	if Elevated() != Elevated() {
		t.Fatal("elevation changed between calls")
	}
}
