// Package notification sends best-effort confirmation and alert messages.
// Every send runs detached from the caller with its own bounded timeout:
// a slow or failing mail collaborator must never stall or fail checkout.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// OrderSummary carries the order fields the dispatcher needs, decoupled
// from the order package to keep the dependency one-way.
type OrderSummary struct {
	OrderNumber   string
	CustomerEmail string
	Status        string
	Total         string
	Lines         []LineSummary
}

type LineSummary struct {
	ProductName string
	Quantity    int
	Price       string
}

// StockAlert mirrors the inventory stock event for admin mail.
type StockAlert struct {
	ProductID   string
	ProductName string
	Level       string
	Remaining   int
}

type Dispatcher struct {
	sender     Sender
	adminEmail string
	timeout    time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(sender Sender, adminEmail string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sender: sender, adminEmail: adminEmail, timeout: timeout}
}

// dispatch запускает отправку в фоне; ошибки только логируются.
func (d *Dispatcher) dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, msg); err != nil {
			log.Error().Err(err).
				Str("template", msg.Template).
				Str("recipient", msg.Recipient).
				Msg("notification: delivery failed")
		}
	}()
}

func (d *Dispatcher) OrderConfirmation(o OrderSummary) {
	items := make([]map[string]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, map[string]any{
			"product":  l.ProductName,
			"quantity": l.Quantity,
			"price":    l.Price,
		})
	}
	d.dispatch(Message{
		Template:  "order-confirmation",
		Recipient: o.CustomerEmail,
		Subject:   "Your order " + o.OrderNumber,
		Data: map[string]any{
			"order_number": o.OrderNumber,
			"total":        o.Total,
			"items":        items,
		},
	})
}

func (d *Dispatcher) AdminNewOrder(o OrderSummary) {
	d.dispatch(Message{
		Template:  "admin-new-order",
		Recipient: d.adminEmail,
		Subject:   "New order " + o.OrderNumber,
		Data: map[string]any{
			"order_number": o.OrderNumber,
			"total":        o.Total,
		},
	})
}

func (d *Dispatcher) StockAlertMail(a StockAlert) {
	d.dispatch(Message{
		Template:  "stock-alert",
		Recipient: d.adminEmail,
		Subject:   "Stock alert: " + a.ProductName,
		Data: map[string]any{
			"product_id": a.ProductID,
			"product":    a.ProductName,
			"level":      a.Level,
			"remaining":  a.Remaining,
		},
	})
}

func (d *Dispatcher) StatusChanged(o OrderSummary) {
	d.dispatch(Message{
		Template:  "order-status-changed",
		Recipient: o.CustomerEmail,
		Subject:   "Order " + o.OrderNumber + " is now " + o.Status,
		Data: map[string]any{
			"order_number": o.OrderNumber,
			"status":       o.Status,
		},
	})
}

// Wait blocks until in-flight sends finish. Used by shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
