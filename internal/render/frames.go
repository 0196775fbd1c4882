package render

import "sync"

// Frames records every model rendered during an action. The last frame is what
// the page ends up showing.
type Frames struct {
	mu     sync.Mutex
	frames []ViewModel
}

// Render appends vm.
func (f *Frames) Render(vm ViewModel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, vm)
}

// Last returns the most recent frame and whether any was rendered.
func (f *Frames) Last() (ViewModel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return ViewModel{}, false
	}
	return f.frames[len(f.frames)-1], true
}

// All returns a copy of every frame in order.
func (f *Frames) All() []ViewModel {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ViewModel, len(f.frames))
	copy(out, f.frames)
	return out
}
