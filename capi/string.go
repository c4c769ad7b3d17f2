package capi

// String is a UTF-16 string as the runtime passes it around, mirroring
// cef_string_utf16_t. Data holds raw code units, not runes; surrogate
// pairs stay split exactly as script produced them.
type String struct {
	Data []uint16

	// Dtor releases the storage behind Data. Set when the runtime
	// allocated the storage; nil when the Go side owns it.
	Dtor func(s *String)
}

// Free runs the dtor, if any, and clears the string.
func (s *String) Free() {
	if s == nil {
		return
	}
	if s.Dtor != nil {
		s.Dtor(s)
	}
	s.Data = nil
	s.Dtor = nil
}
