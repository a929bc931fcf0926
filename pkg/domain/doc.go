/*
Package domain contains the shared vocabulary of the agentry runtime.

It defines the error taxonomy reported by runtime loops, routines and tasks, the
lifecycle status a unit moves through, and the lifecycle events emitted to
observers. The package is kept free of concurrency machinery so that every other
package (control, agent, routine, observability) can depend on it.

# Key Entities

  - Status: the lifecycle phase of a unit (Created → Initializing → Running →
    Interrupting → Finalizing → Terminated).
  - Errors: ErrInterrupted, ErrTimeout, ErrAborted, ErrRegistrationTaken,
    ErrMailboxClosed and the FailedError wrapper for domain failures.
  - LifecycleHooks: callbacks for status changes, step outcomes and child
    terminations.
*/
package domain
