// Package v8 provides typed handles for the scripting side of the
// renderer process: contexts, values, and exceptions.
//
// Every type wraps an owning ref.Ptr handle. Operations that hand
// pointers to the runtime document whether they borrow or consume them;
// the one sharp edge is ExecuteFunction, whose arguments are always
// consumed because the callee releases them.
//
// All operations in this package must run on the renderer thread. Use
// the task package to get there.
package v8
