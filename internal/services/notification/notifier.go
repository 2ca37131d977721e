// Package notification delivers proposal execution and rollback reports to
// the review team. Delivery is fire-and-forget from the engine's point of
// view: callers log errors and never act on them.
package notification

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Notifier reports engine outcomes to people
type Notifier interface {
	SendExecutionResult(ctx context.Context, title string, success bool, details string) error
	SendRollbackNotification(ctx context.Context, title, reason string) error
}

// MultiNotifier fans a notification out to every configured channel
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a fan-out notifier; nil entries are skipped
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// SendExecutionResult implements Notifier
func (m *MultiNotifier) SendExecutionResult(ctx context.Context, title string, success bool, details string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.SendExecutionResult(ctx, title, success, details); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendRollbackNotification implements Notifier
func (m *MultiNotifier) SendRollbackNotification(ctx context.Context, title, reason string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.SendRollbackNotification(ctx, title, reason); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes notifications to the application log
type LogNotifier struct{}

// SendExecutionResult implements Notifier
func (LogNotifier) SendExecutionResult(ctx context.Context, title string, success bool, details string) error {
	logrus.WithFields(logrus.Fields{"title": title, "success": success}).Info(details)
	return nil
}

// SendRollbackNotification implements Notifier
func (LogNotifier) SendRollbackNotification(ctx context.Context, title, reason string) error {
	logrus.WithFields(logrus.Fields{"title": title}).Infof("Rolled back: %s", reason)
	return nil
}
