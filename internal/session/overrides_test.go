package session

import (
	"errors"
	"image/color"
	"strings"
	"testing"
)

func TestOverridesRestoreFirstValue(t *testing.T) {
	name := "original"
	count := 1

	var ovr Overrides
	Set(&ovr, &name, "first")
	Set(&ovr, &count, 2)
	Set(&ovr, &name, "second")
	if name != "second" || count != 2 {
		t.Fatalf("overrides not applied: %q %d", name, count)
	}
	if ovr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ovr.Len())
	}

	ovr.Restore()
	if name != "original" || count != 1 {
		t.Fatalf("after Restore: %q %d", name, count)
	}
	ovr.Restore()
	if name != "original" || ovr.Len() != 0 {
		t.Fatalf("second Restore changed state: %q", name)
	}
}

func TestOverridesRestoreOnError(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	settings := RenderSettings{Width: 64, Background: gray}
	run := func() error {
		var ovr Overrides
		defer ovr.Restore()
		Set(&ovr, &settings.Background, color.RGBA{A: 255})
		Set(&ovr, &settings.Width, 128)
		return errors.New("failed mid-pass")
	}
	if err := run(); err == nil {
		t.Fatal("expected error")
	}
	if settings.Background != gray || settings.Width != 64 {
		t.Fatalf("settings after error = %+v, want gray background at width 64", settings)
	}
}

func TestBestEffort(t *testing.T) {
	if err := BestEffort(quietLogger(), "ok", func() error { return nil }); err != nil {
		t.Fatalf("BestEffort(ok) = %v", err)
	}

	boom := errors.New("boom")
	if err := BestEffort(quietLogger(), "fails", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("BestEffort(fails) = %v, want boom", err)
	}

	err := BestEffort(quietLogger(), "panics", func() error { panic("no view") })
	if err == nil || !strings.Contains(err.Error(), "no view") {
		t.Fatalf("BestEffort(panics) = %v", err)
	}
}
