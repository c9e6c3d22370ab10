package session

import "log"

// deathPenalty is the currency cost of dying: a quarter of the balance,
// rounded half-up to a whole unit.
func deathPenalty(balance int) int {
	if balance <= 0 {
		return 0
	}
	return (balance*25 + 50) / 100
}

// Respawn runs the death-recovery sequence: restore the player to the last
// saved checkpoint, apply the death penalty, persist, and hand control
// back. The scene is reloaded only when death happened in a different scene
// than the last save. If the save record or the player is absent the
// sequence aborts before any step runs.
func (o *Orchestrator) Respawn() error {
	if o.pipeline.Active() {
		log.Printf("session: respawn rejected, sequence in flight")
		return ErrSequenceActive
	}
	p := o.reg.Player()
	if o.save == nil || p == nil {
		log.Printf("session: respawn aborted, save=%v player=%v", o.save != nil, p != nil)
		return ErrRespawnPrecondition
	}

	p.SetInputEnabled(false)
	return o.pipeline.Begin(Transition{
		Load: func() *Await {
			// Dying in the scene of the last save skips the full reload.
			if o.scenes.ActiveScene() == o.save.SceneID {
				return Completed(nil)
			}
			return o.scenes.LoadSceneAsync(o.save.SceneID)
		},
		PostLoad: func() {
			p.Teleport(o.save.X, o.save.Y)
			if o.resetEncounter != nil {
				o.resetEncounter()
			}
			if w := o.reg.Wallet(); w != nil {
				w.SetBalance(w.Balance() - deathPenalty(w.Balance()))
			}
			_, max := p.Health()
			p.SetHealth(max)
			_ = o.SaveGameEvent(SaveReasonDeathRespawn)
		},
		OnDone: func() {
			p.SetInputEnabled(true)
		},
	})
}
