package taskrun

import "github.com/ndowmon/taskrun/core"

// Id is an opaque, totally-ordered identifier assigned to a submitted task.
// Nothing about its bit layout is observable; it is only equatable and
// usable as a map key. Defined in taskrun/core so runner and pool can
// operate on it without importing this package back.
type Id = core.Id

// IdGenerator issues monotonically increasing ids. It is not safe for
// concurrent use; the executor owns a single generator and calls Next
// from one goroutine at a time (submission is serialized through Run).
type IdGenerator = core.IdGenerator
