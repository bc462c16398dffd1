package service

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrInhumadoNotFound = errors.New("inhumado not found")

	ErrInvalidInput          = errors.New("invalid input")
	ErrEmptyText             = errors.New("message text cannot be empty")
	ErrApprovedMessageLocked = errors.New("cannot edit an approved message")

	ErrForbidden = errors.New("not allowed to modify this resource")

	ErrUserHasMessages    = errors.New("user still has messages, delete them together instead")
	ErrProfileImageExists = errors.New("user already has a profile image, replace it instead")
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanModify reports whether the actor may change a resource owned by ownerID.
func (a Actor) CanModify(ownerID uuid.UUID) bool {
	return a.IsAdmin || a.UserID == ownerID
}
