package checker

import "time"

// ProgressReporter provides callbacks for reporting program loading progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnLoadStart is called before the root files are parsed.
	OnLoadStart(rootFiles int)

	// OnFileLoaded is called after each file (root or imported) is parsed and bound.
	OnFileLoaded(fileName string)

	// OnLoadComplete is called once every reachable file is loaded.
	OnLoadComplete(files int, duration time.Duration)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnLoadStart(rootFiles int)                        {}
func (n *NoOpProgressReporter) OnFileLoaded(fileName string)                     {}
func (n *NoOpProgressReporter) OnLoadComplete(files int, duration time.Duration) {}
