package labeltool

import (
	"time"

	"github.com/cyclopcam/labeltool/pkg/annotation"
)

// Loader computes the annotation counts of every file of every model, a little at a time,
// so that a UI can stay responsive while a big sequence is loaded.
// Step must be called from the same goroutine that mutates the models.
type Loader struct {
	models  []*annotation.Model
	view    int
	file    int
	stopped bool
	now     func() time.Time
}

func NewLoader(models []*annotation.Model) *Loader {
	return &Loader{
		models: models,
		now:    time.Now,
	}
}

// Restart begins again from the first file of the first model
func (l *Loader) Restart() {
	l.view = 0
	l.file = 0
	l.stopped = false
}

// Stop abandons the remaining work
func (l *Loader) Stop() {
	l.stopped = true
}

// Done returns true if there is nothing left to count
func (l *Loader) Done() bool {
	return l.stopped || l.view >= len(l.models)
}

// Progress returns the number of files counted so far, and the total number of files
func (l *Loader) Progress() (done, total int) {
	for i, m := range l.models {
		if m == nil {
			continue
		}
		total += m.NumFiles()
		if i < l.view {
			done += m.NumFiles()
		} else if i == l.view {
			done += l.file
		}
	}
	return
}

// Step counts files until 'budget' has elapsed, and returns true when all files are counted.
// At least one file is counted per call.
func (l *Loader) Step(budget time.Duration) bool {
	if l.Done() {
		return true
	}
	deadline := l.now().Add(budget)
	for l.view < len(l.models) {
		m := l.models[l.view]
		if m != nil {
			for l.file < m.NumFiles() {
				m.CountFile(l.file)
				l.file++
				if !l.now().Before(deadline) {
					l.skipFinished()
					return l.Done()
				}
			}
		}
		l.view++
		l.file = 0
	}
	return true
}

// skipFinished moves past models whose files have all been counted
func (l *Loader) skipFinished() {
	for l.view < len(l.models) {
		m := l.models[l.view]
		if m != nil && l.file < m.NumFiles() {
			return
		}
		l.view++
		l.file = 0
	}
}
