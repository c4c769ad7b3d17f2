package simcef

import (
	"unicode/utf16"

	"github.com/medialink/cef-bridge/capi"
)

// newUserFree allocates a tracked string the caller must release through
// StringUserFreeFree (or its dtor).
func (rt *Runtime) newUserFree(s string) *capi.String {
	return rt.newUserFreeUnits(utf16.Encode([]rune(s)))
}

func (rt *Runtime) newUserFreeUnits(units []uint16) *capi.String {
	data := make([]uint16, len(units))
	copy(data, units)
	rt.liveStrings.Add(1)
	return &capi.String{
		Data: data,
		Dtor: func(*capi.String) {
			rt.liveStrings.Add(-1)
		},
	}
}

// stringUTF16Set implements the entry point: fills dst with src, copying
// when asked. Copies are tracked like any other allocation; shared
// storage stays the caller's problem.
func (rt *Runtime) stringUTF16Set(src []uint16, dst *capi.String, copyMode int32) int32 {
	if dst == nil {
		return 0
	}
	dst.Free()
	if copyMode != 0 {
		data := make([]uint16, len(src))
		copy(data, src)
		dst.Data = data
		rt.liveStrings.Add(1)
		dst.Dtor = func(*capi.String) {
			rt.liveStrings.Add(-1)
		}
		return 1
	}
	dst.Data = src
	dst.Dtor = nil
	return 1
}

func (rt *Runtime) freeUserFree(s *capi.String) {
	s.Free()
}

func decodeString(s *capi.String) string {
	if s == nil {
		return ""
	}
	return string(utf16.Decode(s.Data))
}
