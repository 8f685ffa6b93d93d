package scheduler

import "syscall"

// Named so Run's switch on the signal returned from Inbox.Sleep reads
// as shutdown/reload/dump/wake instead of bare syscall constants.
var (
	sigTerm = syscall.SIGTERM
	sigHup  = syscall.SIGHUP
	sigUsr1 = syscall.SIGUSR1
	sigChld = syscall.SIGCHLD
)
