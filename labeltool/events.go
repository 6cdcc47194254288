package labeltool

// Events sent through LabelTool.Events()

// CurrentChanged is sent after all views have moved to a new row
type CurrentChanged struct {
	Row             int
	KeepAnnotations bool // True when moving to the next frame, where the UI may carry annotations over
}

// DirtyChanged is sent when the dirty flag of a view's model changes
type DirtyChanged struct {
	View  int
	Dirty bool
}

// StatusMessage is a transient message for the user
type StatusMessage struct {
	Message string
}

// AnnotationsLoaded is sent after a sequence has been (re)loaded, or cleared
type AnnotationsLoaded struct {
	Filename string // Empty when annotations were cleared
}
