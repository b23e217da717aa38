package scheduler

import "errors"

// Submit errors. Callers such as the order notification handler log these
// and leave the order with whatsapp_sent unset.
var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: job queue full")
	ErrUnknownJobKind      = errors.New("scheduler: no executor for job kind")
)
