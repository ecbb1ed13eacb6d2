package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
)

// ErrDiscard помечает сообщение, которое бессмысленно возвращать в очередь.
var ErrDiscard = errors.New("discard message")

const maxInFlight = 10

// ConsumerMessage запускает потребителя очереди queueName. Сообщения обрабатываются
// параллельно, не более maxInFlight одновременно. Ошибка обработчика возвращает
// сообщение в очередь, если она не оборачивает ErrDiscard.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func(context.Context, []byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(ctx, d.Body); err != nil {
						requeue := !errors.Is(err, ErrDiscard)
						log.Error("failed to handle message", slog.Bool("requeue", requeue), sl.Err(err))
						if nackErr := d.Nack(false, requeue); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
