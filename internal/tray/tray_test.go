package tray

import "testing"

func TestTray_Toggle(t *testing.T) {
	tr := New(false)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("toggle callbacks = %v, want [true false]", got)
	}
	if tr.IsEnabled() {
		t.Error("tray should be disabled after two toggles")
	}
}

func TestTray_SetTracking(t *testing.T) {
	tr := New(false)
	tr.SetTracking(true)
	if !tr.IsEnabled() {
		t.Error("SetTracking(true) not reflected")
	}
}

func TestTray_Open(t *testing.T) {
	tr := New(true)
	opened := false
	tr.OnOpen(func() { opened = true })
	tr.handleOpen()
	if !opened {
		t.Error("open callback not called")
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 layers"},
		{1, "1 layer"},
		{7, "7 layers"},
	}
	for _, tt := range tests {
		if got := layersTitle(tt.n); got != tt.want {
			t.Errorf("layersTitle(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
	if toggleTitle(true) == toggleTitle(false) {
		t.Error("toggle titles should differ")
	}
}
