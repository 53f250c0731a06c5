// Package errs defines the error kinds a packaging run can fail with and
// the process exit code each kind maps to.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a packaging failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindManifest
	KindTargetResolution
	KindMissingField
	KindUnsupportedArch
	KindInvalidFileType
	KindIO
	KindSigning
	KindBuildFailure
)

var kindNames = map[Kind]string{
	KindUnknown:          "error",
	KindConfig:           "config error",
	KindManifest:         "manifest error",
	KindTargetResolution: "target resolution error",
	KindMissingField:     "missing field",
	KindUnsupportedArch:  "unsupported architecture",
	KindInvalidFileType:  "invalid file type",
	KindIO:               "io error",
	KindSigning:          "signing error",
	KindBuildFailure:     "build failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode is the process exit status reported for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfig:
		return 2
	case KindManifest:
		return 3
	case KindTargetResolution:
		return 4
	case KindMissingField:
		return 5
	case KindUnsupportedArch:
		return 6
	case KindInvalidFileType:
		return 7
	case KindIO:
		return 8
	case KindSigning:
		return 9
	case KindBuildFailure:
		return 10
	default:
		return 1
	}
}

// Error is a classified packaging error. Member names the workspace member
// being packaged when the failure happened, if any.
type Error struct {
	Kind    Kind
	Member  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Member != "" {
		msg += " in " + e.Member
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so that errors.Is(err, errs.New(kind, "")) works
// as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Member == "" && t.Err == nil
}

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// ForMember attaches the member name to a classified error, or classifies
// an unclassified one as an IO error.
func ForMember(member string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Member == "" {
			cp := *e
			cp.Member = member
			return &cp
		}
		return err
	}
	return &Error{Kind: KindIO, Member: member, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err to a process exit status; nil is success.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}
