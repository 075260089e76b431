package inference

import "time"

const (
	EventReloaded     = "models_reloaded"
	EventReloadFailed = "models_reload_failed"
)

// Event announces the outcome of a reload.
type Event struct {
	Type    string       `json:"type"`
	Version uint64       `json:"version"`
	Health  HealthStatus `json:"health"`
	Error   string       `json:"error,omitempty"`
	Time    time.Time    `json:"time"`
}

// Subscribe registers fn for every future reload. fn runs on the reloading
// goroutine with the load lock held: it must not block and must not call
// LoadModels or Reload.
func (s *Service) Subscribe(fn func(Event)) {
	s.subsMu.Lock()
	s.subs = append(s.subs, fn)
	s.subsMu.Unlock()
}

func (s *Service) publish(ev Event) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, fn := range s.subs {
		fn(ev)
	}
}
