package notifier

import "errors"

var (
	// ErrPublish не удалось опубликовать уведомление
	ErrPublish = errors.New("notifier: publish failed")

	// ErrEncode не удалось сериализовать уведомление
	ErrEncode = errors.New("notifier: encode failed")
)
