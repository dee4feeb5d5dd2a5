package cloner

// Phases reported to the observer.
const (
	PhaseClean     = "clean"
	PhaseStructure = "structure"
	PhaseFetch     = "fetch"
	PhaseWrite     = "write"
)

// Observer receives progress callbacks during a run. All fields are
// optional. Rendering (progress bars, spinners) lives in the caller; the
// orchestrator only reports.
type Observer struct {
	// OnPhase is called when a pipeline phase starts.
	OnPhase func(phase string)
	// OnWriteStart is called before a collection's document queue is
	// written.
	OnWriteStart func(collectionName string, documents int)
	// OnDocumentDone is called after each document write attempt.
	OnDocumentDone func()
}

func (o Observer) normalized() Observer {
	if o.OnPhase == nil {
		o.OnPhase = func(string) {}
	}

	if o.OnWriteStart == nil {
		o.OnWriteStart = func(string, int) {}
	}

	if o.OnDocumentDone == nil {
		o.OnDocumentDone = func() {}
	}

	return o
}
