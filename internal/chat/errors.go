package chat

import "errors"

var (
	// ErrNotAParticipant is a user error: the sender does not belong to the
	// conversation it is trying to post into. Nothing is persisted.
	ErrNotAParticipant = errors.New("sender is not a participant of the conversation")

	// ErrUnknownSender means a bound connection references a user the store
	// has no record of. This is an integrity violation, not a user error.
	ErrUnknownSender = errors.New("unknown sender")

	// ErrEmptyMessage rejects messages that are blank after trimming.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrPersistence wraps any store failure during submit. The submit is
	// all-or-nothing: on this error no fan-out and no counter update ran.
	ErrPersistence = errors.New("persistence failure")

	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
)
