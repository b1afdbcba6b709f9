package common

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the HTTP layer can map them to a status
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPersistence
	KindNotFound
	KindConflict
	KindExternalService
	KindPaymentRequired
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	case KindPaymentRequired:
		return "payment_required"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error wraps an underlying error with a Kind and the operation that failed
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation builds a validation error from a message
func Validation(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))}
}

// KindOf returns the kind of the outermost classified error in the chain.
// Unclassified errors are KindInternal unless they wrap a known sentinel.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for sentinel, kind := range sentinelKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// Thread errors
	ErrThreadNotFound    = errors.New("thread not found")
	ErrThreadArchived    = errors.New("thread is archived")
	ErrSlugGeneration    = errors.New("slug generation failed")
	ErrThreadPersistence = errors.New("thread could not be persisted")
	ErrSlugTaken         = errors.New("slug already taken")
	ErrChannelNotFound   = errors.New("channel not found")

	// File errors
	ErrFileNotFound        = errors.New("file not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")

	// Moderation errors
	ErrDuplicateMod      = errors.New("wallet is already a mod")
	ErrCannotRemoveAdmin = errors.New("cannot remove admin")
	ErrModNotFound       = errors.New("mod not found")

	// Profile errors
	ErrUsernameTaken = errors.New("username already taken")

	// Payment and ad errors
	ErrPaymentRequired    = errors.New("payment required")
	ErrPaymentNotVerified = errors.New("payment not verified")
	ErrSignatureUsed      = errors.New("transaction signature already used")
	ErrAdNotFound         = errors.New("ad not found")
	ErrDatesBooked        = errors.New("requested dates are already booked")
	ErrBlobStore          = errors.New("blob store unavailable")
	ErrPaymentVerifier    = errors.New("payment verifier unavailable")
)

var sentinelKinds = map[error]Kind{
	ErrNotFound:            KindNotFound,
	ErrForbidden:           KindForbidden,
	ErrInvalidInput:        KindValidation,
	ErrThreadNotFound:      KindNotFound,
	ErrThreadArchived:      KindConflict,
	ErrSlugGeneration:      KindPersistence,
	ErrThreadPersistence:   KindPersistence,
	ErrSlugTaken:           KindConflict,
	ErrChannelNotFound:     KindValidation,
	ErrFileNotFound:        KindNotFound,
	ErrUnsupportedFileType: KindValidation,
	ErrFileTooLarge:        KindValidation,
	ErrDuplicateMod:        KindConflict,
	ErrCannotRemoveAdmin:   KindConflict,
	ErrModNotFound:         KindNotFound,
	ErrUsernameTaken:       KindConflict,
	ErrPaymentRequired:     KindPaymentRequired,
	ErrPaymentNotVerified:  KindPaymentRequired,
	ErrSignatureUsed:       KindConflict,
	ErrAdNotFound:          KindNotFound,
	ErrDatesBooked:         KindConflict,
	ErrBlobStore:           KindExternalService,
	ErrPaymentVerifier:     KindExternalService,
}
