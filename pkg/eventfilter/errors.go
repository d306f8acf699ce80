package eventfilter

import "errors"

var (
	// ErrConfigLoad is returned when an ExtractorMap source can neither
	// be read from disk nor parsed as an inline document.
	ErrConfigLoad = errors.New("eventfilter: config could not be loaded")

	// ErrConfigParse is returned when config content is malformed.
	ErrConfigParse = errors.New("eventfilter: config content is malformed")

	// ErrConfigInvalid is returned when a FieldMap fails validation.
	ErrConfigInvalid = errors.New("eventfilter: config is invalid")

	// ErrWorkerStart is returned when a FilterWorker fails to start.
	ErrWorkerStart = errors.New("eventfilter: worker failed to start")

	// ErrWorkerDown describes a Worker that has terminated. Nothing in
	// this module returns or records it; a terminated Worker's Registry
	// entry is removed through the Worker's terminate callback.
	ErrWorkerDown = errors.New("eventfilter: worker is down")

	// ErrUnknownField describes a subscription that references a
	// field_name that is not a key of the event type's FieldMap. The
	// Worker does not return it: such a subscription is kept and never
	// matches until a reload adds the field.
	ErrUnknownField = errors.New("eventfilter: subscription references unknown field")

	// ErrWorkerClosed is returned when a message is sent to a Worker
	// that has already stopped.
	ErrWorkerClosed = errors.New("eventfilter: worker is closed")

	// ErrSupervisorClosed is returned when an operation is attempted on
	// a closed Supervisor.
	ErrSupervisorClosed = errors.New("eventfilter: supervisor is closed")

	// ErrReloadTimeout describes reload_config's per-worker deadline
	// being exceeded. Supervisor.ReloadConfig does not return it: a
	// Worker that misses the deadline is logged and the reload still
	// reports success.
	ErrReloadTimeout = errors.New("eventfilter: reload timed out")
)
