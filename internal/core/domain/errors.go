package domain

import "errors"

var (
	ErrNoSession         = errors.New("no session found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAlreadyOpen       = errors.New("connection already owns a session")
	ErrOwnSession        = errors.New("presenter cannot join its own session")
	ErrPollNotFound      = errors.New("poll not found")
	ErrPollNotActive     = errors.New("no active poll found")
	ErrPollAlreadyActive = errors.New("a poll is already active in this session")
	ErrNoClosedPoll      = errors.New("no final results found")
	ErrDuplicateVote     = errors.New("you have already submitted an answer")
	ErrInvalidOption     = errors.New("invalid option for this poll")
	ErrInvalidInput      = errors.New("invalid question or options")
	ErrPersistence       = errors.New("failed to persist poll result")
)
