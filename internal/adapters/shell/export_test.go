package shell

// SetTailSize overrides the amount of output kept for error reports.
func (e *Executor) SetTailSize(n int) {
	e.tailSize = n
}

// ResolveEnvironmentExported exposes resolveEnvironment for testing.
func ResolveEnvironmentExported(sysEnv, overrides []string) []string {
	return resolveEnvironment(sysEnv, overrides)
}
