package indicator

// NullLine discards Set calls. Useful for tests and for platforms without a
// GPIO backend where the indicator is genuinely absent.
type NullLine struct{}

func (NullLine) Set(bool) error { return nil }
func (NullLine) Close() error   { return nil }
