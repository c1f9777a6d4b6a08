package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/workflow"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// Consumer consumes decision commands from RabbitMQ. Back-office systems
// push approvals and rejections onto the decision queues instead of going
// through the HTTP API.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	decisions   DecisionService
	queuePrefix string
	logger      *zap.Logger
	done        chan struct{}
}

// DecisionService defines the approval surface the consumer drives.
type DecisionService interface {
	Decide(ctx context.Context, req workflow.Request) (*workflow.Result, error)
}

// DecisionCommand is the message body on the decision queues.
type DecisionCommand struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Actor      string `json:"actor"`
	Reason     string `json:"reason,omitempty"`
}

// NewConsumer creates a new RabbitMQ consumer.
func NewConsumer(url, queuePrefix string, decisions DecisionService, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if queuePrefix == "" {
		queuePrefix = "marketplace.approvals"
	}

	return &Consumer{
		conn:        conn,
		channel:     channel,
		decisions:   decisions,
		queuePrefix: queuePrefix,
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

// Start declares the decision queues and starts consuming.
func (c *Consumer) Start(ctx context.Context) error {
	approveQueue := fmt.Sprintf("%s.approve", c.queuePrefix)
	rejectQueue := fmt.Sprintf("%s.reject", c.queuePrefix)

	if _, err := c.channel.QueueDeclare(approveQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", approveQueue, err)
	}

	if _, err := c.channel.QueueDeclare(rejectQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", rejectQueue, err)
	}

	approveMsgs, err := c.channel.Consume(approveQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", approveQueue, err)
	}

	rejectMsgs, err := c.channel.Consume(rejectQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", rejectQueue, err)
	}

	c.logger.Info("Started consuming from RabbitMQ",
		zap.String("approveQueue", approveQueue),
		zap.String("rejectQueue", rejectQueue),
	)

	go c.consumeDecisions(ctx, approveMsgs, workflow.DecisionApprove)
	go c.consumeDecisions(ctx, rejectMsgs, workflow.DecisionReject)

	return nil
}

func (c *Consumer) consumeDecisions(ctx context.Context, msgs <-chan amqp.Delivery, decision workflow.Decision) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Decision channel closed", zap.String("decision", string(decision)))
				return
			}

			c.logger.Debug("Received decision message",
				zap.String("decision", string(decision)),
				zap.String("body", string(msg.Body)))

			var cmd DecisionCommand
			if err := json.Unmarshal(msg.Body, &cmd); err != nil {
				c.logger.Error("Failed to unmarshal DecisionCommand", zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			entityType, err := model.ParseEntityType(cmd.EntityType)
			if err != nil {
				c.logger.Error("Unknown entity type in decision command",
					zap.String("entity_type", cmd.EntityType),
					zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			_, err = c.decisions.Decide(ctx, workflow.Request{
				EntityType: entityType,
				EntityID:   cmd.EntityID,
				Decision:   decision,
				Actor:      cmd.Actor,
				Reason:     cmd.Reason,
			})
			if err != nil {
				// Only infrastructure failures are worth redelivering;
				// command-level failures would just fail again.
				if errors.Is(err, workflow.ErrRepositoryUnavailable) {
					c.logger.Error("Decision failed, requeueing",
						zap.String("entity_id", cmd.EntityID),
						zap.Error(err))
					msg.Nack(false, true)
					continue
				}
				c.logger.Error("Decision rejected by workflow",
					zap.String("entity_type", string(entityType)),
					zap.String("entity_id", cmd.EntityID),
					zap.String("decision", string(decision)),
					zap.Error(err))
				msg.Ack(false)
				continue
			}

			msg.Ack(false)
		}
	}
}

// Close closes the consumer.
func (c *Consumer) Close() error {
	close(c.done)

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
