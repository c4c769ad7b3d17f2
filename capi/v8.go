package capi

// V8Context mirrors the slice of cef_v8context_t the bridge touches.
type V8Context struct {
	Base BaseRefCounted

	// IsValid reports whether the underlying context can still be used.
	IsValid func(self *V8Context) int32

	// IsSame reports whether two handles refer to the same context.
	IsSame func(self, that *V8Context) int32

	// Enter makes this the current context for the calling thread.
	// Returns nonzero on success. Must be balanced by Exit.
	Enter func(self *V8Context) int32

	// Exit leaves the context. Only valid after a successful Enter.
	Exit func(self *V8Context) int32

	// Eval executes a string of source in the context. On success it
	// stores an owned value in retval and returns nonzero; on a script
	// error it stores an owned exception in exception and returns zero.
	Eval func(self *V8Context, code *String, scriptURL *String, startLine int32, retval **V8Value, exception **V8Exception) int32
}

// RefBase returns the reference-count header.
func (c *V8Context) RefBase() *BaseRefCounted { return &c.Base }

// V8Value mirrors the slice of cef_v8value_t the bridge touches.
type V8Value struct {
	Base BaseRefCounted

	IsValid    func(self *V8Value) int32
	IsString   func(self *V8Value) int32
	IsFunction func(self *V8Value) int32

	// GetStringValue returns the value's string data as a user-free
	// string the caller must release through StringUserFreeFree.
	GetStringValue func(self *V8Value) *String

	// ExecuteFunction calls the value as a function. The this argument
	// is borrowed (nil for the global receiver); ownership of every
	// argument transfers to the callee, which releases them. A nil
	// return with HasException set means the call threw.
	ExecuteFunction func(self *V8Value, this *V8Value, args []*V8Value) *V8Value

	// HasException reports whether the last ExecuteFunction on this
	// value left an exception pending.
	HasException func(self *V8Value) int32

	// GetException returns the pending exception as an owned handle.
	GetException func(self *V8Value) *V8Exception

	// ClearException drops the pending exception state.
	ClearException func(self *V8Value) int32
}

// RefBase returns the reference-count header.
func (v *V8Value) RefBase() *BaseRefCounted { return &v.Base }

// V8Exception mirrors the slice of cef_v8exception_t the bridge touches.
// The string getters return user-free strings.
type V8Exception struct {
	Base BaseRefCounted

	GetMessage            func(self *V8Exception) *String
	GetScriptResourceName func(self *V8Exception) *String
	GetSourceLine         func(self *V8Exception) *String
	GetLineNumber         func(self *V8Exception) int32
	GetStartColumn        func(self *V8Exception) int32
}

// RefBase returns the reference-count header.
func (e *V8Exception) RefBase() *BaseRefCounted { return &e.Base }
