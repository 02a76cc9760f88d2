package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/service"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type MailConsumerContext struct {
	Config *config.Config
	Logger *zap.SugaredLogger
	Sender *service.MailSender
}

// MailEventHandler processes one inbound mail event. The returned bool
// tells the worker whether a failed delivery should be requeued.
type MailEventHandler func(ctx context.Context, event service.EventDTO, app *MailConsumerContext) (bool, error)

func (r *RabbitMQ) ConsumeMailEvents(ctx context.Context, handler MailEventHandler, maxWorker int, app *MailConsumerContext) error {
	msgs, err := r.Consume(QueueMailSend)
	if err != nil {
		return err
	}

	for i := 0; i < maxWorker; i++ {
		go func(workerNumber int) {
			runMailWorker(ctx, r, workerNumber, msgs, handler, app)
		}(i + 1)
	}

	return nil
}

func runMailWorker(ctx context.Context, rabbitMQ *RabbitMQ, workerNumber int, msgs <-chan amqp091.Delivery, handler MailEventHandler, app *MailConsumerContext) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Mail Worker %d] Shutting down", workerNumber)
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("[Mail Worker %d] Message channel closed", workerNumber)
				return
			}
			processMailEvent(ctx, rabbitMQ, workerNumber, msg, handler, app)
		}
	}
}

func processMailEvent(ctx context.Context, rabbitMQ *RabbitMQ, workerNumber int, msg amqp091.Delivery, handler MailEventHandler, app *MailConsumerContext) {
	if msg.Body == nil {
		log.Printf("[Mail Worker %d] Received empty message body", workerNumber)
		rabbitMQ.Nack(msg, false)
		return
	}

	var event service.EventDTO
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("[Mail Worker %d] Invalid event payload: %v", workerNumber, err)
		rabbitMQ.Nack(msg, false)
		return
	}

	shouldRequeue, err := handler(ctx, event, app)
	if err != nil {
		log.Printf("[Mail Worker %d] Handler error processing event %s: %v", workerNumber, event.EventName, err)

		if !shouldRequeue {
			rabbitMQ.Nack(msg, false)
			return
		}

		rabbitMQ.Nack(msg, true)
		return
	}

	rabbitMQ.Ack(msg)
}
