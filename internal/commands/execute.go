package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Log    func(LogArgs) (Result, error)
	Goal   func(GoalArgs) (Result, error)
	Quiet  func(QuietArgs) (Result, error)
	Toggle func(ToggleArgs) (Result, error)
	Check  func() (Result, error)
	Remind func(RemindArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeLog:
		if handlers.Log == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "log handler not configured"}
		}
		return handlers.Log(*cmd.Log)
	case TypeGoal:
		if handlers.Goal == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "goal handler not configured"}
		}
		return handlers.Goal(*cmd.Goal)
	case TypeQuiet:
		if handlers.Quiet == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "quiet handler not configured"}
		}
		return handlers.Quiet(*cmd.Quiet)
	case TypeToggle:
		if handlers.Toggle == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "toggle handler not configured"}
		}
		return handlers.Toggle(*cmd.Toggle)
	case TypeCheck:
		if handlers.Check == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "check handler not configured"}
		}
		return handlers.Check()
	case TypeRemind:
		if handlers.Remind == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "remind handler not configured"}
		}
		return handlers.Remind(*cmd.Remind)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
