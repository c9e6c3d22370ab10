package obj

import (
	"encoding/json"
	"log"

	"github.com/milk9111/hollowmere/session"
)

// MissionState is the progress of one mission.
type MissionState string

const (
	MissionLocked   MissionState = "locked"
	MissionActive   MissionState = "active"
	MissionComplete MissionState = "complete"
)

// MissionLog tracks mission progress by mission id. It lives outside the
// spawn registry alongside the orchestrator; a build without missions just
// passes no log.
type MissionLog struct {
	states map[string]MissionState
}

func NewMissionLog() *MissionLog {
	return &MissionLog{states: map[string]MissionState{}}
}

// Set records a mission's progress.
func (l *MissionLog) Set(id string, state MissionState) {
	l.states[id] = state
}

// State returns a mission's progress, defaulting to locked.
func (l *MissionLog) State(id string) MissionState {
	if s, ok := l.states[id]; ok {
		return s
	}
	return MissionLocked
}

func (l *MissionLog) Snapshot() session.Snapshot {
	data, err := json.Marshal(l.states)
	if err != nil {
		log.Printf("missions: snapshot: %v", err)
		return nil
	}
	return data
}

func (l *MissionLog) Apply(snap session.Snapshot) {
	if snap == nil {
		return
	}
	states := map[string]MissionState{}
	if err := json.Unmarshal(snap, &states); err != nil {
		log.Printf("missions: apply snapshot: %v", err)
		return
	}
	l.states = states
}
