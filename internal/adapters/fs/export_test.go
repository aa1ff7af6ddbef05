package fs

import "time"

// SetClock overrides the time source used for manifest timestamps.
func (p *Packager) SetClock(now func() time.Time) {
	p.now = now
}

// SetRename overrides the rename used to finalize packages.
func (p *Packager) SetRename(rename func(oldpath, newpath string) error) {
	p.rename = rename
}
