package ports

import "context"

// NotificationLevel severidad de una notificación al usuario.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyWarning NotificationLevel = "warning"
	NotifyInfo    NotificationLevel = "info"
)

// Notification mensaje para el canal de notificaciones (snackbar/toast en el cliente).
type Notification struct {
	Level      NotificationLevel `json:"level"`
	Message    string            `json:"message"`
	BusinessID string            `json:"business_id,omitempty"`
	Reference  string            `json:"reference,omitempty"`
}

// Notifier canal de notificaciones. El núcleo reporta resultados pero no decide cómo se muestran.
// Un fallo al notificar nunca revierte la operación.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NopNotifier descarta las notificaciones.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}
