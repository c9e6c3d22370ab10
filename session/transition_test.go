package session

import (
	"errors"
	"testing"
)

// fakeFader finishes a fade after two Update ticks.
type fakeFader struct {
	fading bool
	frames int
	outs   int
	ins    int
}

func (f *fakeFader) StartFadeOut() {
	f.fading = true
	f.frames = 2
	f.outs++
}

func (f *fakeFader) StartFadeIn() {
	f.fading = true
	f.frames = 2
	f.ins++
}

func (f *fakeFader) Update() {
	if f.frames > 0 {
		f.frames--
	}
	if f.frames == 0 {
		f.fading = false
	}
}

func (f *fakeFader) Done() bool {
	return !f.fading
}

func pump(p *Pipeline, n int) {
	for i := 0; i < n; i++ {
		p.Update()
	}
}

func TestPipelineStepOrdering(t *testing.T) {
	fader := &fakeFader{}
	p := NewPipeline(fader)

	var order []string
	err := p.Begin(Transition{
		Load: func() *Await {
			order = append(order, "load")
			return Completed(nil)
		},
		PostLoad: func() { order = append(order, "post_load") },
		OnDone:   func() { order = append(order, "done") },
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if p.Phase() != FadingOut {
		t.Fatalf("expected fading_out after Begin, got %s", p.Phase())
	}
	if len(order) != 0 {
		t.Fatalf("no step should run before the fade-out finishes, got %v", order)
	}

	pump(p, 2)
	if p.Phase() != FadingIn {
		t.Fatalf("expected fading_in after load, got %s", p.Phase())
	}

	pump(p, 2)
	if p.Phase() != Idle {
		t.Fatalf("expected idle after fade-in, got %s", p.Phase())
	}

	want := []string{"load", "post_load", "done"}
	if len(order) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected steps %v, got %v", want, order)
		}
	}
	if fader.outs != 1 || fader.ins != 1 {
		t.Fatalf("expected one fade-out and one fade-in, got %d/%d", fader.outs, fader.ins)
	}
}

func TestPipelineRejectsOverlap(t *testing.T) {
	p := NewPipeline(&fakeFader{})
	if err := p.Begin(Transition{}); err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}
	if !p.Active() {
		t.Fatal("pipeline should be active after Begin")
	}

	var ran bool
	err := p.Begin(Transition{OnDone: func() { ran = true }})
	if !errors.Is(err, ErrSequenceActive) {
		t.Fatalf("expected ErrSequenceActive, got %v", err)
	}
	if ran {
		t.Fatal("rejected transition must not run")
	}

	pump(p, 4)
	if p.Active() {
		t.Fatal("first transition should still complete")
	}
	if ran {
		t.Fatal("rejected transition must not be queued")
	}
}

func TestPipelineNilFader(t *testing.T) {
	p := NewPipeline(nil)

	var order []string
	err := p.Begin(Transition{
		Load:     func() *Await { order = append(order, "load"); return Completed(nil) },
		PostLoad: func() { order = append(order, "post_load") },
		OnDone:   func() { order = append(order, "done") },
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if p.Active() {
		t.Fatal("synchronous transition without a fader should finish inside Begin")
	}
	if len(order) != 3 {
		t.Fatalf("expected all three steps, got %v", order)
	}
}

func TestPipelineLoadError(t *testing.T) {
	p := NewPipeline(&fakeFader{})

	loadErr := errors.New("scene file missing")
	var postLoad, done bool
	if err := p.Begin(Transition{
		Load:     func() *Await { return Completed(loadErr) },
		PostLoad: func() { postLoad = true },
		OnDone:   func() { done = true },
	}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	pump(p, 4)
	if p.Phase() != Idle {
		t.Fatalf("pipeline must return to idle after a load error, got %s", p.Phase())
	}
	if postLoad {
		t.Fatal("post-load must not run against a scene that never arrived")
	}
	if !done {
		t.Fatal("on-done must still run so the caller regains control")
	}
}

func TestPipelineAsyncLoad(t *testing.T) {
	p := NewPipeline(nil)

	var complete func(error)
	var postLoad bool
	if err := p.Begin(Transition{
		Load: func() *Await {
			a, c := NewAwait(nil)
			complete = c
			return a
		},
		PostLoad: func() { postLoad = true },
	}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if p.Phase() != Loading {
		t.Fatalf("expected loading while the await is unsettled, got %s", p.Phase())
	}

	pump(p, 3)
	if p.Phase() != Loading {
		t.Fatalf("pipeline must hold in loading, got %s", p.Phase())
	}
	if postLoad {
		t.Fatal("post-load must wait for the load to settle")
	}

	complete(nil)
	pump(p, 1)
	if p.Phase() != Idle {
		t.Fatalf("expected idle after settle, got %s", p.Phase())
	}
	if !postLoad {
		t.Fatal("post-load should run once the load settles")
	}
}

func TestAwaitSettlesOnce(t *testing.T) {
	var settled int
	a, complete := NewAwait(func(error) { settled++ })
	if a.Done() {
		t.Fatal("await must not report done before completion")
	}

	complete(nil)
	if !a.Done() {
		t.Fatal("await should report done after completion")
	}
	if !a.Done() {
		t.Fatal("done must stay true")
	}
	if settled != 1 {
		t.Fatalf("on-settled hook must run exactly once, ran %d times", settled)
	}

	wantErr := errors.New("boom")
	b := Completed(wantErr)
	if !b.Done() {
		t.Fatal("completed await should report done immediately")
	}
	if !errors.Is(b.Err(), wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, b.Err())
	}
}
