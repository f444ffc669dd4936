package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeNew     Type = "new"
	TypeShow    Type = "show"
	TypeAbandon Type = "abandon"
	TypeLang    Type = "lang"
	TypeSuggest Type = "suggest"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const MaxQuestDays = 30

type NewArgs struct {
	Goal            string
	DurationMinutes int
}

type Subject string

const (
	SubjectActive    Subject = "active"
	SubjectCompleted Subject = "completed"
	SubjectAbandoned Subject = "abandoned"
	SubjectToday     Subject = "today"
	SubjectCategory  Subject = "category"
)

type ShowArgs struct {
	Subject  Subject
	Category string
}

type LangArgs struct {
	Tag string
}

type Command struct {
	Type Type
	Raw  string
	New  *NewArgs
	Show *ShowArgs
	Lang *LangArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeNew:
		return parseNew(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeAbandon:
		return Command{Type: TypeAbandon, Raw: input}, nil
	case TypeLang:
		return parseLang(input, args)
	case TypeSuggest:
		return Command{Type: TypeSuggest, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseNew(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "new requires a duration and a goal"}
	}
	minutes, err := ParseDuration(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	goal := strings.TrimSpace(strings.Join(args[1:], " "))
	return Command{Type: TypeNew, Raw: raw, New: &NewArgs{Goal: goal, DurationMinutes: minutes}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := Subject(strings.ToLower(args[0]))
	switch subject {
	case SubjectActive, SubjectCompleted, SubjectAbandoned, SubjectToday:
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
	case SubjectCategory:
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		if name == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show category requires a name"}
		}
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Category: name}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown show subject: %s", subject)}
	}
}

func parseLang(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "lang requires one language tag"}
	}
	return Command{Type: TypeLang, Raw: raw, Lang: &LangArgs{Tag: args[0]}}, nil
}

// ParseDuration reads quest lengths like 30m, 2h or 7d and returns minutes.
// Day counts are capped at MaxQuestDays.
func ParseDuration(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid duration: %s", raw)
		}
		if days > MaxQuestDays {
			return 0, fmt.Errorf("duration over %d days: %s", MaxQuestDays, raw)
		}
		return days * 24 * 60, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < time.Minute {
		return 0, fmt.Errorf("invalid duration: %s", raw)
	}
	if d > MaxQuestDays*24*time.Hour {
		return 0, fmt.Errorf("duration over %d days: %s", MaxQuestDays, raw)
	}
	return int(d / time.Minute), nil
}
