package metrics

// Recorder defines observability hooks for the timer contexts. Implementations
// may forward to Prometheus. NoopRecorder is used when metrics are not configured.
type Recorder interface {
	IncCommand(context, action string)
	IncRelayed(action string)
	IncDropped(target string)
	IncStoreError(op string)
	IncWidget(mounted bool)
	SetElapsedSeconds(seconds int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncCommand(string, string) {}
func (NoopRecorder) IncRelayed(string)         {}
func (NoopRecorder) IncDropped(string)         {}
func (NoopRecorder) IncStoreError(string)      {}
func (NoopRecorder) IncWidget(bool)            {}
func (NoopRecorder) SetElapsedSeconds(int)     {}

// OrNoop returns recorder, or NoopRecorder when it is nil.
func OrNoop(recorder Recorder) Recorder {
	if recorder == nil {
		return NoopRecorder{}
	}
	return recorder
}
