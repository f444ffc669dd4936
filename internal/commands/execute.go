package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	New     func(NewArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Abandon func() (Result, error)
	Lang    func(LangArgs) (Result, error)
	Suggest func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeNew:
		if handlers.New == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.New(*cmd.New)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypeAbandon:
		if handlers.Abandon == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Abandon()
	case TypeLang:
		if handlers.Lang == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Lang(*cmd.Lang)
	case TypeSuggest:
		if handlers.Suggest == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Suggest()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
