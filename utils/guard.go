package utils

// Guard runs a cleanup function on the failure paths of a function that allocates a resource:
//
//	guard := NewGuard(func() { f.Close() })
//	defer guard.OnFail()
//	if err != nil {
//		return err
//	}
//	guard.Success()
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that calls onFailCleanup from OnFail unless Success was called first.
func NewGuard(onFailCleanup func()) *Guard {
	guard := &Guard{}
	guard.OnFail = func() {
		if !guard.success {
			onFailCleanup()
		}
	}
	return guard
}

// Success disarms the cleanup.
func (guard *Guard) Success() {
	guard.success = true
}
