package scrollsync

import "testing"

// recordingPane counts writes and can loop them back into the controller,
// mimicking the echo scroll event a real pane emits after a programmatic
// offset change.
type recordingPane struct {
	writes []float64
	echoTo func(float64)
}

func (p *recordingPane) SetScrollTop(o float64) {
	p.writes = append(p.writes, o)
	if p.echoTo != nil {
		p.echoTo(o)
	}
}

func TestCodeScrollWritesNotesOnce(t *testing.T) {
	code := &recordingPane{}
	notes := &recordingPane{}
	c := New(code, notes)

	c.OnCodeScroll(120)

	if len(notes.writes) != 1 || notes.writes[0] != 120 {
		t.Fatalf("notes writes = %v, want [120]", notes.writes)
	}
	if len(code.writes) != 0 {
		t.Fatalf("code pane must not be written back, got %v", code.writes)
	}
}

func TestEchoIsAbsorbed(t *testing.T) {
	code := &recordingPane{}
	notes := &recordingPane{}
	c := New(code, notes)
	// wire echoes: a write to a pane immediately re-enters the controller
	// as that pane's own scroll event
	code.echoTo = c.OnCodeScroll
	notes.echoTo = c.OnNotesScroll

	c.OnCodeScroll(300)

	if len(notes.writes) != 1 {
		t.Fatalf("expected exactly one corrective write to notes, got %d", len(notes.writes))
	}
	if len(code.writes) != 0 {
		t.Fatalf("echo must not write back to code, got %v", code.writes)
	}

	// and the symmetric direction, after the flags settled
	c.OnNotesScroll(40)
	if len(code.writes) != 1 || code.writes[0] != 40 {
		t.Fatalf("code writes = %v, want [40]", code.writes)
	}
	if len(notes.writes) != 1 {
		t.Fatalf("notes must not receive a second write, got %v", notes.writes)
	}
}

func TestAlternatingUserScrolls(t *testing.T) {
	code := &recordingPane{}
	notes := &recordingPane{}
	c := New(code, notes)
	code.echoTo = c.OnCodeScroll
	notes.echoTo = c.OnNotesScroll

	for i := 0; i < 5; i++ {
		c.OnCodeScroll(float64(10 * i))
		c.OnNotesScroll(float64(10*i + 5))
	}
	if len(notes.writes) != 5 || len(code.writes) != 5 {
		t.Fatalf("writes = code %d / notes %d, want 5 / 5", len(code.writes), len(notes.writes))
	}
}
