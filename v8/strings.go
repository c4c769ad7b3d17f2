package v8

import (
	"unicode/utf16"

	"github.com/medialink/cef-bridge/capi"
	"github.com/medialink/cef-bridge/errors"
)

// newString converts a Go string into runtime-owned UTF-16 storage. The
// caller frees the result with Free once the runtime copied it.
func newString(s string) (*capi.String, error) {
	var cs capi.String
	units := utf16.Encode([]rune(s))
	if capi.StringUTF16Set(units, &cs, 1) == 0 {
		return nil, errors.StringConversion("utf16_set")
	}
	return &cs, nil
}

// StringFromUserFree consumes a string the runtime allocated for us,
// returning its contents and freeing the storage. A nil pointer decodes
// to the empty string.
func StringFromUserFree(s *capi.String) string {
	if s == nil {
		return ""
	}
	out := string(utf16.Decode(s.Data))
	capi.StringUserFreeFree(s)
	return out
}
