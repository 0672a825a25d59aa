// Package errs provides the typed errors shared by the order engine.
//
// Each error kind follows the same pattern:
//   - a sentinel variable (ErrValueIsRequired, ErrRoleAlreadyAssigned, ...)
//   - a struct carrying the details
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Callers classify errors with errors.Is against the sentinels. The ValueIs*
// kinds together form the validation family (see IsValidation). Transition,
// terminal-state and role-assignment errors are ordinary outcomes of
// concurrent use and are not logged as failures.
package errs
