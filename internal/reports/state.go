package reports

import (
	"sync"
	"time"

	"roomreports/pkg/contracts/domain"
)

// Status is the load state of the dashboard.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the result of one successful load. It is never modified
// after it is published; a newer load replaces it wholesale.
type Snapshot struct {
	Report    domain.Report `json:"report"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Source    string        `json:"source"`
}

// Alert is the last user-facing export failure message.
type Alert struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ViewState is a copy of everything the view renders.
type ViewState struct {
	Status         Status         `json:"status"`
	Loading        bool           `json:"loading"`
	Error          string         `json:"error,omitempty"`
	Exporting      bool           `json:"exporting"`
	Snapshot       *Snapshot      `json:"snapshot,omitempty"`
	ShowPDFReport  bool           `json:"showPdfReport"`
	PDFData        domain.PDFData `json:"pdfData,omitempty"`
	LastAlert      *Alert         `json:"lastAlert,omitempty"`
	RefreshTrigger int64          `json:"refreshTrigger"`
	Version        uint64         `json:"version"`
}

// Report returns the snapshot's report, or an empty one before the first
// successful load.
func (v ViewState) Report() domain.Report {
	if v.Snapshot == nil {
		return Normalize(nil)
	}
	return v.Snapshot.Report
}

// State holds the dashboard view state. Loads are numbered when they start;
// a finished load is applied only if no later-started load was applied
// before it.
type State struct {
	mu sync.Mutex

	loading   int
	exporting int
	errMsg    string
	snapshot  *Snapshot

	nextSeq    uint64
	appliedSeq uint64

	pdfOpen bool
	pdfData domain.PDFData

	lastAlert      *Alert
	refreshTrigger int64
	version        uint64

	listeners    map[int]func(ViewState)
	nextListener int
}

// NewState returns an idle state.
func NewState() *State {
	return &State{listeners: make(map[int]func(ViewState))}
}

// View returns the current view state.
func (s *State) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe registers fn to receive every new view state. fn runs with the
// state locked, so it must not block or call back into State.
func (s *State) Subscribe(fn func(ViewState)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *State) viewLocked() ViewState {
	v := ViewState{
		Loading:        s.loading > 0,
		Error:          s.errMsg,
		Exporting:      s.exporting > 0,
		Snapshot:       s.snapshot,
		ShowPDFReport:  s.pdfOpen,
		PDFData:        s.pdfData,
		LastAlert:      s.lastAlert,
		RefreshTrigger: s.refreshTrigger,
		Version:        s.version,
	}

	switch {
	case s.loading > 0:
		v.Status = StatusLoading
	case s.errMsg != "":
		v.Status = StatusError
	case s.snapshot != nil:
		v.Status = StatusReady
	default:
		v.Status = StatusIdle
	}
	return v
}

// update applies fn and publishes the result.
func (s *State) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn()
	s.version++
	v := s.viewLocked()
	for _, l := range s.listeners {
		l(v)
	}
}

// beginFetch marks a load as started and clears the error text.
func (s *State) beginFetch() uint64 {
	var seq uint64
	s.update(func() {
		s.nextSeq++
		seq = s.nextSeq
		s.loading++
		s.errMsg = ""
	})
	return seq
}

func (s *State) completeFetch(seq uint64, snap *Snapshot) (applied bool) {
	s.update(func() {
		s.loading--
		if seq > s.appliedSeq {
			s.appliedSeq = seq
			s.snapshot = snap
			s.errMsg = ""
			applied = true
		}
	})
	return applied
}

func (s *State) failFetch(seq uint64, msg string) (applied bool) {
	s.update(func() {
		s.loading--
		if seq > s.appliedSeq {
			s.appliedSeq = seq
			s.errMsg = msg
			applied = true
		}
	})
	return applied
}

func (s *State) beginLoading() {
	s.update(func() { s.loading++ })
}

func (s *State) endLoading() {
	s.update(func() { s.loading-- })
}

func (s *State) setError(msg string) {
	s.update(func() { s.errMsg = msg })
}

func (s *State) beginExport() {
	s.update(func() { s.exporting++ })
}

func (s *State) endExport() {
	s.update(func() { s.exporting-- })
}

func (s *State) openPDF(data domain.PDFData) {
	s.update(func() {
		s.pdfOpen = true
		s.pdfData = data
	})
}

func (s *State) closePDF() {
	s.update(func() {
		s.pdfOpen = false
		s.pdfData = nil
	})
}

func (s *State) recordAlert(msg string, at time.Time) {
	s.update(func() { s.lastAlert = &Alert{Message: msg, At: at} })
}

func (s *State) bumpRefreshTrigger() {
	s.update(func() { s.refreshTrigger++ })
}
