// Package apperr описывает семантические ошибки бизнес-уровня.
//
// Каждая ошибка несёт категорию (Kind), по которой HTTP-слой выбирает статус ответа,
// и стабильный машинно-читаемый код причины (Reason), по которому клиент понимает,
// что именно пошло не так: например, нужно оформить подписку или убрать участника.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindConflict     Kind = "CONFLICT"
	KindUpstream     Kind = "UPSTREAM_ERROR"
	KindInternal     Kind = "INTERNAL"
)

func (k Kind) Error() string { return string(k) }

// Reason — стабильный код причины отказа.
type Reason string

const (
	ReasonUserNotFound         Reason = "USER_NOT_FOUND"
	ReasonNotListOwner         Reason = "NOT_LIST_OWNER"
	ReasonPremiumRequired      Reason = "PREMIUM_REQUIRED"
	ReasonCollaboratorLimit    Reason = "COLLABORATOR_LIMIT"
	ReasonCollaboratorNotFound Reason = "COLLABORATOR_NOT_FOUND"
	ReasonSelfShare            Reason = "SELF_SHARE"
	ReasonAlreadyShared        Reason = "ALREADY_SHARED"
	ReasonAlreadyPremium       Reason = "ALREADY_PREMIUM"
	ReasonInvalidSignature     Reason = "INVALID_SIGNATURE"
	ReasonMalformedEvent       Reason = "MALFORMED_EVENT"
	ReasonInvalidCredentials   Reason = "INVALID_CREDENTIALS"
	ReasonAlreadyExists        Reason = "ALREADY_EXISTS"
	ReasonPaymentProvider      Reason = "PAYMENT_PROVIDER"
	ReasonStorage              Reason = "STORAGE"
)

// Error — ошибка с категорией, кодом причины, сообщением для пользователя
// и, опционально, исходной причиной.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

// New создаёт ошибку без исходной причины.
func New(kind Kind, reason Reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: msg}
}

// Wrap создаёт ошибку, оборачивающую err.
func Wrap(kind Kind, reason Reason, err error, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: msg, Err: err}
}

// Internal оборачивает ошибку хранилища.
func Internal(err error, msg string) *Error {
	return Wrap(KindInternal, ReasonStorage, err, msg)
}

// Upstream оборачивает ошибку платёжного провайдера.
func Upstream(err error, msg string) *Error {
	return Wrap(KindUpstream, ReasonPaymentProvider, err, msg)
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is позволяет сравнивать ошибку как с категорией, так и с обёрнутой причиной:
// errors.Is(err, apperr.KindForbidden).
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// KindOf возвращает категорию ошибки; для ошибок вне пакета — KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ReasonOf возвращает код причины или пустую строку.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
