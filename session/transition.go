package session

import "log"

// Phase is the pipeline's current position in a transition.
type Phase int

const (
	Idle Phase = iota
	FadingOut
	Loading
	PostLoad
	FadingIn
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FadingOut:
		return "fading_out"
	case Loading:
		return "loading"
	case PostLoad:
		return "post_load"
	case FadingIn:
		return "fading_in"
	}
	return "unknown"
}

// Fader animates a screen fade. A fade runs over some number of update
// ticks; Done reports whether the current fade has finished.
type Fader interface {
	StartFadeOut()
	StartFadeIn()
	Update()
	Done() bool
}

// Transition describes one fade-out / load / post-load / fade-in unit.
// Any step may be nil; nil steps are skipped.
type Transition struct {
	// Load starts the asynchronous work of the transition and returns a
	// handle the pipeline polls until done.
	Load func() *Await
	// PostLoad runs after Load has fully completed and before the fade-in
	// begins.
	PostLoad func()
	// OnDone runs once the transition has fully completed and the pipeline
	// is Idle again.
	OnDone func()
}

// Pipeline sequences transitions. It is driven by Update from the game tick,
// so every mutation it performs happens on the single logical game thread.
// Only one transition may be in flight; a second Begin is rejected, not
// queued.
type Pipeline struct {
	fader Fader

	phase Phase
	cur   Transition
	load  *Await
}

// NewPipeline creates a pipeline. fader may be nil, in which case fade steps
// degrade to no-ops and transitions still complete.
func NewPipeline(fader Fader) *Pipeline {
	return &Pipeline{fader: fader}
}

// Active reports whether a transition is in flight.
func (p *Pipeline) Active() bool {
	return p.phase != Idle
}

// Phase returns the current pipeline phase.
func (p *Pipeline) Phase() Phase {
	return p.phase
}

// Begin starts a transition. It returns ErrSequenceActive if one is already
// in flight; overlapping transitions are a programming error in the caller,
// not a workload to absorb.
func (p *Pipeline) Begin(t Transition) error {
	if p.phase != Idle {
		log.Printf("session: transition rejected, pipeline is %s", p.phase)
		return ErrSequenceActive
	}
	p.cur = t
	if p.fader == nil {
		p.enterLoading()
		return nil
	}
	p.phase = FadingOut
	p.fader.StartFadeOut()
	return nil
}

// Update advances the in-flight transition by one tick. Every step
// guarantees eventual progression back to Idle, even when an inner step
// fails.
func (p *Pipeline) Update() {
	switch p.phase {
	case Idle:
	case FadingOut:
		p.fader.Update()
		if p.fader.Done() {
			p.enterLoading()
		}
	case Loading:
		if p.load == nil || p.load.Done() {
			p.runPostLoad()
		}
	case FadingIn:
		p.fader.Update()
		if p.fader.Done() {
			p.finish()
		}
	}
}

func (p *Pipeline) enterLoading() {
	p.phase = Loading
	if p.cur.Load != nil {
		p.load = p.cur.Load()
	}
	// Poll immediately so synchronous loads finish on the same tick.
	p.Update()
}

func (p *Pipeline) runPostLoad() {
	p.phase = PostLoad
	if p.load != nil && p.load.Err() != nil {
		// The scene never arrived; running the post-load step against the
		// previous scene would corrupt state. Skip straight to the fade-in
		// so the pipeline still reaches Idle.
		log.Printf("session: transition load failed: %v", p.load.Err())
	} else if p.cur.PostLoad != nil {
		p.cur.PostLoad()
	}
	p.load = nil
	if p.fader == nil {
		p.finish()
		return
	}
	p.phase = FadingIn
	p.fader.StartFadeIn()
}

func (p *Pipeline) finish() {
	done := p.cur.OnDone
	p.cur = Transition{}
	p.load = nil
	p.phase = Idle
	if done != nil {
		done()
	}
}
