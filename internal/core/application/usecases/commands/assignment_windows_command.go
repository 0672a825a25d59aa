package commands

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrBroadcastAssignmentsCommandIsNotConstructed = errors.New(
		"BroadcastAssignmentsCommand must be created via NewBroadcastAssignmentsCommand constructor",
	)
	ErrExpireAssignmentWindowsCommandIsNotConstructed = errors.New(
		"ExpireAssignmentWindowsCommand must be created via NewExpireAssignmentWindowsCommand constructor",
	)
)

// BroadcastAssignmentsCommand republishes every open courier and broker
// window to the candidates currently nearby.
type BroadcastAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

func NewBroadcastAssignmentsCommand() BroadcastAssignmentsCommand {
	return BroadcastAssignmentsCommand{guard: guard.NewConstructorGuard()}
}

func (c BroadcastAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrBroadcastAssignmentsCommandIsNotConstructed)
}

// ExpireAssignmentWindowsCommand finds windows open for longer than TTL.
type ExpireAssignmentWindowsCommand struct {
	ttl time.Duration

	guard guard.ConstructorGuard
}

func NewExpireAssignmentWindowsCommand(ttl time.Duration) (ExpireAssignmentWindowsCommand, error) {
	if ttl <= 0 {
		return ExpireAssignmentWindowsCommand{}, errs.NewValueIsInvalidErrorWithCause("ttl",
			fmt.Errorf("%s is not positive", ttl))
	}
	return ExpireAssignmentWindowsCommand{ttl: ttl, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireAssignmentWindowsCommand) Validate() error {
	return c.guard.Validate(ErrExpireAssignmentWindowsCommandIsNotConstructed)
}

func (c ExpireAssignmentWindowsCommand) TTL() time.Duration {
	return c.ttl
}
